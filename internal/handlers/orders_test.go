package handlers

import (
	"errors"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/kopipos/internal/models"
)

func newVariant(t *testing.T, productName, label string, price int64, stock int) models.Variant {
	t.Helper()
	return models.Variant{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Label:     label,
		Price:     decimal.NewFromInt(price),
		Cost:      decimal.NewFromInt(price / 2),
		Stock:     stock,
		Product:   &models.Product{Name: productName},
	}
}

func variantMap(variants ...models.Variant) map[uuid.UUID]models.Variant {
	m := make(map[uuid.UUID]models.Variant, len(variants))
	for _, v := range variants {
		m[v.ID] = v
	}
	return m
}

func badRequest(t *testing.T, err error, fragment string) {
	t.Helper()
	var fiberErr *fiber.Error
	if !errors.As(err, &fiberErr) {
		t.Fatalf("expected *fiber.Error, got %T: %v", err, err)
	}
	if fiberErr.Code != fiber.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", fiberErr.Code)
	}
	if !strings.Contains(fiberErr.Message, fragment) {
		t.Fatalf("expected message containing %q, got %q", fragment, fiberErr.Message)
	}
}

func TestPriceItemsSubtotalAndTotal(t *testing.T) {
	americano := newVariant(t, "Americano", "Hot - M", 20000, 10)
	latte := newVariant(t, "Caffe Latte", "Iced - M", 30000, 5)
	vMap := variantMap(americano, latte)

	items := []checkoutItemRequest{
		{VariantID: americano.ID.String(), Qty: 3},
		{VariantID: latte.ID.String(), Qty: 2, Discount: decimal.NewFromInt(5000)},
	}

	priced, err := priceItems(items, vMap, decimal.NewFromInt(10000))
	if err != nil {
		t.Fatalf("priceItems returned error: %v", err)
	}

	// 3*20000 + (2*30000 - 5000) = 115000, minus order discount 10000
	if !priced.Subtotal.Equal(decimal.NewFromInt(115000)) {
		t.Errorf("subtotal = %s, want 115000", priced.Subtotal)
	}
	if !priced.Total.Equal(decimal.NewFromInt(105000)) {
		t.Errorf("total = %s, want 105000", priced.Total)
	}
}

func TestPriceItemsTotalClampedAtZero(t *testing.T) {
	v := newVariant(t, "Espresso", "Single", 15000, 10)
	items := []checkoutItemRequest{{VariantID: v.ID.String(), Qty: 1}}

	priced, err := priceItems(items, variantMap(v), decimal.NewFromInt(99999))
	if err != nil {
		t.Fatalf("priceItems returned error: %v", err)
	}
	if !priced.Total.Equal(decimal.Zero) {
		t.Errorf("total = %s, want 0", priced.Total)
	}
	if !priced.Subtotal.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("subtotal = %s, want 15000", priced.Subtotal)
	}
}

func TestPriceItemsInsufficientStock(t *testing.T) {
	v := newVariant(t, "Americano", "Hot - M", 20000, 2)
	items := []checkoutItemRequest{{VariantID: v.ID.String(), Qty: 3}}

	_, err := priceItems(items, variantMap(v), decimal.Zero)
	badRequest(t, err, "Stock not enough for Americano - Hot - M")
}

func TestPriceItemsUnknownVariant(t *testing.T) {
	v := newVariant(t, "Americano", "Hot - M", 20000, 10)
	missing := uuid.NewString()
	items := []checkoutItemRequest{{VariantID: missing, Qty: 1}}

	_, err := priceItems(items, variantMap(v), decimal.Zero)
	badRequest(t, err, "Variant not found: "+missing)
}

func TestPriceItemsRejectsMalformedID(t *testing.T) {
	_, err := priceItems([]checkoutItemRequest{{VariantID: "not-a-uuid", Qty: 1}}, variantMap(), decimal.Zero)
	badRequest(t, err, "Variant not found")
}

func TestResolvePaymentCashRequiresFullAmount(t *testing.T) {
	total := decimal.NewFromInt(60000)

	_, err := resolvePayment(models.PaymentCash, decimal.NewFromInt(50000), total, false)
	badRequest(t, err, "Paid amount is less than total")

	paid, err := resolvePayment(models.PaymentCash, decimal.NewFromInt(70000), total, false)
	if err != nil {
		t.Fatalf("resolvePayment returned error: %v", err)
	}
	if !paid.Equal(decimal.NewFromInt(70000)) {
		t.Errorf("effective paid = %s, want 70000", paid)
	}
}

func TestResolvePaymentDepositRequiresCustomer(t *testing.T) {
	_, err := resolvePayment(models.PaymentDeposit, decimal.Zero, decimal.NewFromInt(20000), false)
	badRequest(t, err, "Customer is required for deposit payment")
}

func TestResolvePaymentDepositIgnoresPaidAndBalance(t *testing.T) {
	// The deposit balance does not need to cover the total: the customer may
	// run a tab, the handler drives the balance negative. effectivePaid is
	// always the total regardless of what the caller sent.
	total := decimal.NewFromInt(20000)
	paid, err := resolvePayment(models.PaymentDeposit, decimal.NewFromInt(5), total, true)
	if err != nil {
		t.Fatalf("resolvePayment returned error: %v", err)
	}
	if !paid.Equal(total) {
		t.Errorf("effective paid = %s, want %s", paid, total)
	}
}

func TestPointsFor(t *testing.T) {
	cases := []struct {
		total int64
		want  int
	}{
		{0, 0},
		{9999, 0},
		{10000, 1},
		{19999, 1},
		{60000, 6},
		{105000, 10},
	}
	for _, tc := range cases {
		if got := pointsFor(decimal.NewFromInt(tc.total)); got != tc.want {
			t.Errorf("pointsFor(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

func TestCheckoutRequestValidate(t *testing.T) {
	valid := func() checkoutRequest {
		return checkoutRequest{
			PaymentType: models.PaymentCash,
			Paid:        decimal.NewFromInt(60000),
			Items:       []checkoutItemRequest{{VariantID: uuid.NewString(), Qty: 3}},
		}
	}

	req := valid()
	if err := req.validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	if req.DineType != models.Takeaway {
		t.Errorf("empty dine type should default to TAKEAWAY, got %q", req.DineType)
	}

	req = valid()
	req.Items = nil
	badRequest(t, req.validate(), "at least one item")

	req = valid()
	req.Items[0].Qty = 0
	badRequest(t, req.validate(), "qty must be positive")

	req = valid()
	req.Items[0].Discount = decimal.NewFromInt(-1)
	badRequest(t, req.validate(), "discount cannot be negative")

	req = valid()
	req.Discount = decimal.NewFromInt(-1)
	badRequest(t, req.validate(), "discount cannot be negative")

	req = valid()
	req.PaymentType = "VOUCHER"
	badRequest(t, req.validate(), "invalid payment type")

	req = valid()
	req.DineType = "DRIVE_THRU"
	badRequest(t, req.validate(), "invalid dine type")
}
