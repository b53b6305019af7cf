package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/kopipos/internal/middleware"
	"github.com/example/kopipos/internal/models"
)

// ShiftHandler manages cashier shift sessions.
type ShiftHandler struct {
	db *gorm.DB
}

// NewShiftHandler constructs ShiftHandler.
func NewShiftHandler(db *gorm.DB) *ShiftHandler {
	return &ShiftHandler{db: db}
}

// CurrentShift returns the open shift of the authenticated cashier, or null.
func (h *ShiftHandler) CurrentShift(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var shift models.Shift
	err := h.db.First(&shift, "cashier_id = ? AND closed_at IS NULL", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{"shift": nil})
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"shift": shift})
}

type openShiftRequest struct {
	OpeningCash decimal.Decimal `json:"openingCash"`
	Notes       string          `json:"notes"`
}

// OpenShift starts a shift; a cashier can hold at most one open shift.
func (h *ShiftHandler) OpenShift(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req openShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.OpeningCash.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "openingCash cannot be negative")
	}

	var existing models.Shift
	err := h.db.First(&existing, "cashier_id = ? AND closed_at IS NULL", userID).Error
	if err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Shift already open")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	shift := models.Shift{
		CashierID:   userID,
		OpenedAt:    time.Now(),
		OpeningCash: req.OpeningCash,
		Notes:       req.Notes,
	}
	if err := h.db.Create(&shift).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"shift": shift})
}

type closeShiftRequest struct {
	ClosingCash decimal.Decimal `json:"closingCash"`
	Notes       string          `json:"notes"`
}

// CloseShift ends the cashier's open shift.
func (h *ShiftHandler) CloseShift(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req closeShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ClosingCash.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "closingCash cannot be negative")
	}

	var shift models.Shift
	if err := h.db.First(&shift, "cashier_id = ? AND closed_at IS NULL", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "No active shift")
		}
		return err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"closed_at":    &now,
		"closing_cash": req.ClosingCash,
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}
	if err := h.db.Model(&shift).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"shift": shift})
}
