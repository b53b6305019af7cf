package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/kopipos/internal/models"
	"github.com/example/kopipos/internal/utils"
)

// CustomerHandler manages customers and their loyalty balances.
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

type customerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ListCustomers returns customers with search and pagination.
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Customer{})

	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ? OR email ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var customers []models.Customer
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&customers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"customers": customers, "total": total})
}

// GetCustomer returns a single customer.
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"customer": customer})
}

// CreateCustomer persists a new customer.
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Name) < 2 {
		return fiber.NewError(fiber.StatusBadRequest, "name is too short")
	}

	customer := models.Customer{
		Name:  req.Name,
		Phone: optional(req.Phone),
		Email: optional(req.Email),
	}
	if err := h.db.Create(&customer).Error; err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fiber.NewError(fiber.StatusConflict, "Phone or email already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"customer": customer})
}

// UpdateCustomer changes name and contact details.
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}
		return err
	}

	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	updates["phone"] = optional(req.Phone)
	updates["email"] = optional(req.Email)

	if err := h.db.Model(&customer).Updates(updates).Error; err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fiber.NewError(fiber.StatusConflict, "Phone or email already exists")
		}
		return err
	}

	return c.JSON(fiber.Map{"customer": customer})
}

// DeleteCustomer removes a customer.
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Customer{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}

type pointsRequest struct {
	Delta int `json:"delta"`
}

// AdjustPoints shifts the loyalty point balance by a signed delta.
func (h *CustomerHandler) AdjustPoints(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req pointsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	return h.adjustBalance(c, id, "points", req.Delta)
}

type depositRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

// AdjustDeposit shifts the deposit balance: positive for a top-up, negative
// for a withdrawal. The balance is allowed to go negative.
func (h *CustomerHandler) AdjustDeposit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	return h.adjustBalance(c, id, "deposit", req.Delta)
}

func (h *CustomerHandler) adjustBalance(c *fiber.Ctx, id uuid.UUID, column string, delta interface{}) error {
	var customer models.Customer
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&customer, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&customer).
			Update(column, gorm.Expr(column+" + ?", delta)).Error; err != nil {
			return err
		}
		return tx.First(&customer, "id = ?", id).Error
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"customer": customer})
}
