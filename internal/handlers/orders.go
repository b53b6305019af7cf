package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/kopipos/internal/middleware"
	"github.com/example/kopipos/internal/models"
	"github.com/example/kopipos/internal/services"
	"github.com/example/kopipos/internal/utils"
)

// IdempotencyHeader carries the client-supplied checkout dedup token. A
// resubmitted request with the same key returns the already-created order
// instead of selling the items twice.
const IdempotencyHeader = "Idempotency-Key"

// maxCodeRetries bounds the retry loop when a generated order code collides
// with an existing row.
const maxCodeRetries = 3

// OrderHandler manages checkout, refund and order queries.
type OrderHandler struct {
	db    *gorm.DB
	cache *services.Cache
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, cache *services.Cache) *OrderHandler {
	return &OrderHandler{db: db, cache: cache}
}

type checkoutItemRequest struct {
	VariantID string          `json:"variantId"`
	Qty       int             `json:"qty"`
	Discount  decimal.Decimal `json:"discount"`
}

type checkoutRequest struct {
	CustomerID  string                `json:"customerId"`
	DineType    models.DineType       `json:"dineType"`
	Discount    decimal.Decimal       `json:"discount"`
	PaymentType models.PaymentType    `json:"paymentType"`
	Paid        decimal.Decimal       `json:"paid"`
	Note        string                `json:"note"`
	Items       []checkoutItemRequest `json:"items"`
}

func (r *checkoutRequest) validate() error {
	if len(r.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "at least one item is required")
	}
	for _, item := range r.Items {
		if item.Qty <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item qty must be positive")
		}
		if item.Discount.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "item discount cannot be negative")
		}
	}
	if r.Discount.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "discount cannot be negative")
	}
	if r.Paid.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "paid cannot be negative")
	}
	if r.DineType == "" {
		r.DineType = models.Takeaway
	}
	if r.DineType != models.DineIn && r.DineType != models.Takeaway {
		return fiber.NewError(fiber.StatusBadRequest, "invalid dine type")
	}
	switch r.PaymentType {
	case models.PaymentCash, models.PaymentQris, models.PaymentCard, models.PaymentDeposit:
		return nil
	default:
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment type")
	}
}

// pricing is the point-in-time result of resolving requested items against
// current variant prices. Stock sufficiency is re-enforced at decrement time
// inside the transaction; this pre-check only produces the early, descriptive
// rejection.
type pricing struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}

func priceItems(items []checkoutItemRequest, vMap map[uuid.UUID]models.Variant, orderDiscount decimal.Decimal) (pricing, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		id, err := uuid.Parse(item.VariantID)
		if err != nil {
			return pricing{}, fiber.NewError(fiber.StatusBadRequest, "Variant not found: "+item.VariantID)
		}
		v, ok := vMap[id]
		if !ok {
			return pricing{}, fiber.NewError(fiber.StatusBadRequest, "Variant not found: "+item.VariantID)
		}
		if v.Stock < item.Qty {
			name := v.Label
			if v.Product != nil {
				name = v.Product.Name + " - " + v.Label
			}
			return pricing{}, fiber.NewError(fiber.StatusBadRequest, "Stock not enough for "+name)
		}
		line := v.Price.Mul(decimal.NewFromInt(int64(item.Qty))).Sub(item.Discount)
		subtotal = subtotal.Add(line)
	}

	total := subtotal.Sub(orderDiscount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return pricing{Subtotal: subtotal, Total: total}, nil
}

// resolvePayment applies the per-method payment rules and returns the amount
// recorded as paid. Deposit payments are clamped to the total and may drive
// the customer balance negative; that is deliberate, the business lets
// regulars run a tab.
func resolvePayment(paymentType models.PaymentType, paid, total decimal.Decimal, hasCustomer bool) (decimal.Decimal, error) {
	if paymentType == models.PaymentDeposit {
		if !hasCustomer {
			return decimal.Zero, fiber.NewError(fiber.StatusBadRequest, "Customer is required for deposit payment")
		}
		return total, nil
	}
	if paid.LessThan(total) {
		return decimal.Zero, fiber.NewError(fiber.StatusBadRequest, "Paid amount is less than total")
	}
	return paid, nil
}

// pointsFor computes the loyalty accrual: one point per Rp 10,000 of total.
func pointsFor(total decimal.Decimal) int {
	return int(total.Div(decimal.NewFromInt(10000)).Floor().IntPart())
}

// CreateOrder is the checkout transaction: order + items + stock decrements +
// ledger entries + customer balance changes in one atomic unit.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	var idemKey *string
	if key := strings.TrimSpace(c.Get(IdempotencyHeader)); key != "" {
		idemKey = &key
		var existing models.Order
		err := h.db.First(&existing, "idempotency_key = ?", key).Error
		if err == nil {
			return h.respondWithOrder(c, existing.ID, fiber.StatusOK)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	// Shift gate. Re-validated inside the transaction below so a concurrent
	// shift close cannot leave an orphaned order.
	var shift models.Shift
	if err := h.db.First(&shift, "cashier_id = ? AND closed_at IS NULL", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "No active shift. Please open a shift first.")
		}
		return err
	}

	var customerID *uuid.UUID
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Customer not found")
		}
		var customer models.Customer
		if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "Customer not found")
			}
			return err
		}
		customerID = &customer.ID
	}

	if req.PaymentType == models.PaymentDeposit && customerID == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Customer is required for deposit payment")
	}

	variantIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		if id, err := uuid.Parse(item.VariantID); err == nil {
			variantIDs = append(variantIDs, id)
		}
	}
	var variants []models.Variant
	if err := h.db.Preload("Product").Find(&variants, "id IN ?", variantIDs).Error; err != nil {
		return err
	}
	vMap := make(map[uuid.UUID]models.Variant, len(variants))
	for _, v := range variants {
		vMap[v.ID] = v
	}

	priced, err := priceItems(req.Items, vMap, req.Discount)
	if err != nil {
		return err
	}

	effectivePaid, err := resolvePayment(req.PaymentType, req.Paid, priced.Total, customerID != nil)
	if err != nil {
		return err
	}

	points := 0
	if customerID != nil {
		points = pointsFor(priced.Total)
	}

	var created models.Order
	var txErr error
	for attempt := 0; attempt < maxCodeRetries; attempt++ {
		txErr = h.db.Transaction(func(tx *gorm.DB) error {
			var open int64
			if err := tx.Model(&models.Shift{}).
				Where("id = ? AND closed_at IS NULL", shift.ID).
				Count(&open).Error; err != nil {
				return err
			}
			if open == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "No active shift. Please open a shift first.")
			}

			order := models.Order{
				Code:           utils.GenerateOrderCode(time.Now()),
				Status:         models.OrderCompleted,
				DineType:       req.DineType,
				PaymentType:    req.PaymentType,
				Subtotal:       priced.Subtotal,
				Discount:       req.Discount,
				Total:          priced.Total,
				Paid:           effectivePaid,
				PointsAwarded:  points,
				IdempotencyKey: idemKey,
				Note:           req.Note,
				CustomerID:     customerID,
				CashierID:      userID,
				ShiftID:        shift.ID,
			}
			for _, item := range req.Items {
				id, _ := uuid.Parse(item.VariantID)
				v := vMap[id]
				order.Items = append(order.Items, models.OrderItem{
					VariantID: v.ID,
					Qty:       item.Qty,
					Price:     v.Price,
					Cost:      v.Cost,
					Discount:  item.Discount,
				})
			}

			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			for _, item := range order.Items {
				// Conditional decrement: the stock check from the pre-read
				// above cannot be trusted at write time, two checkouts may
				// race on the same variant.
				res := tx.Model(&models.Variant{}).
					Where("id = ? AND stock >= ?", item.VariantID, item.Qty).
					Update("stock", gorm.Expr("stock - ?", item.Qty))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					name := item.VariantID.String()
					if v, ok := vMap[item.VariantID]; ok && v.Product != nil {
						name = v.Product.Name + " - " + v.Label
					}
					return fiber.NewError(fiber.StatusBadRequest, "Stock not enough for "+name)
				}

				movement := models.StockMovement{
					VariantID:  item.VariantID,
					Type:       models.MovementOut,
					Qty:        item.Qty,
					RefOrderID: &order.ID,
					UserID:     &userID,
					Note:       fmt.Sprintf("Order %s", order.Code),
				}
				if err := tx.Create(&movement).Error; err != nil {
					return err
				}
			}

			if req.PaymentType == models.PaymentDeposit {
				if err := tx.Model(&models.Customer{}).
					Where("id = ?", *customerID).
					Update("deposit", gorm.Expr("deposit - ?", priced.Total)).Error; err != nil {
					return err
				}
			}

			if points > 0 {
				if err := tx.Model(&models.Customer{}).
					Where("id = ?", *customerID).
					Update("points", gorm.Expr("points + ?", points)).Error; err != nil {
					return err
				}
			}

			created = order
			return nil
		})
		if txErr == nil {
			break
		}
		if constraint, ok := uniqueViolation(txErr); ok {
			if strings.Contains(constraint, "idempotency") {
				// A concurrent duplicate submission won the race; hand back
				// the order it created.
				var existing models.Order
				if err := h.db.First(&existing, "idempotency_key = ?", *idemKey).Error; err == nil {
					return h.respondWithOrder(c, existing.ID, fiber.StatusOK)
				}
			}
			if strings.Contains(constraint, "code") {
				continue
			}
		}
		break
	}
	if txErr != nil {
		return txErr
	}

	h.cache.InvalidateCatalog(c.Context())
	return h.respondWithOrder(c, created.ID, fiber.StatusCreated)
}

// RefundOrder atomically reverses a completed order: restock + IN movements,
// deposit and points reversal, status flip to REFUNDED.
func (h *OrderHandler) RefundOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}

	if order.Status == models.OrderRefunded {
		return fiber.NewError(fiber.StatusBadRequest, "Order already refunded")
	}
	if order.Status == models.OrderCancelled {
		return fiber.NewError(fiber.StatusBadRequest, "Order is cancelled")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := tx.Model(&models.Variant{}).
				Where("id = ?", item.VariantID).
				Update("stock", gorm.Expr("stock + ?", item.Qty)).Error; err != nil {
				return err
			}

			movement := models.StockMovement{
				VariantID:  item.VariantID,
				Type:       models.MovementIn,
				Qty:        item.Qty,
				RefOrderID: &order.ID,
				UserID:     &userID,
				Note:       fmt.Sprintf("Refund %s", order.Code),
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}

		if order.PaymentType == models.PaymentDeposit && order.CustomerID != nil {
			if err := tx.Model(&models.Customer{}).
				Where("id = ?", *order.CustomerID).
				Update("deposit", gorm.Expr("deposit + ?", order.Total)).Error; err != nil {
				return err
			}
		}

		// Reverse exactly what was granted at creation, not a recomputation;
		// the earning rule may have changed since.
		if order.CustomerID != nil && order.PointsAwarded > 0 {
			if err := tx.Model(&models.Customer{}).
				Where("id = ?", *order.CustomerID).
				Update("points", gorm.Expr("points - ?", order.PointsAwarded)).Error; err != nil {
				return err
			}
		}

		return tx.Model(&order).Update("status", models.OrderRefunded).Error
	}); err != nil {
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return h.respondWithOrder(c, order.ID, fiber.StatusOK)
}

// ListOrders returns orders with optional status, code and date filters.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("code ILIKE ?", "%"+q+"%")
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			query = query.Where("created_at <= ?", t)
		}
	}

	var orders []models.Order
	if err := query.Preload("Items.Variant.Product").
		Preload("Cashier").Preload("Customer").
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"orders": orders})
}

// GetOrder returns a single order.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return h.respondWithOrder(c, id, fiber.StatusOK)
}

type editOrderRequest struct {
	Note *string `json:"note"`
}

// UpdateOrder allows a limited edit (note only). Refunded and cancelled
// orders are immutable.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}

	if order.Terminal() {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot edit a refunded/cancelled order")
	}

	var req editOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Note != nil {
		if err := h.db.Model(&order).Update("note", *req.Note).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"order": order})
}

func (h *OrderHandler) respondWithOrder(c *fiber.Ctx, id uuid.UUID, status int) error {
	var order models.Order
	if err := h.db.Preload("Items.Variant.Product").
		Preload("Cashier").Preload("Customer").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}
	return c.Status(status).JSON(fiber.Map{"order": order})
}
