package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kopipos/internal/middleware"
	"github.com/example/kopipos/internal/models"
	"github.com/example/kopipos/internal/services"
)

// InventoryHandler manages the stock movement ledger and the receive/adjust
// operations that feed it.
type InventoryHandler struct {
	db    *gorm.DB
	cache *services.Cache
}

// NewInventoryHandler constructs InventoryHandler.
func NewInventoryHandler(db *gorm.DB, cache *services.Cache) *InventoryHandler {
	return &InventoryHandler{db: db, cache: cache}
}

// ListMovements returns ledger rows with variant/type/date/note filters.
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	query := h.db.Model(&models.StockMovement{})

	if variantID := c.Query("variantId"); variantID != "" {
		id, err := uuid.Parse(variantID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid variantId")
		}
		query = query.Where("variant_id = ?", id)
	}
	if movementType := c.Query("type"); movementType != "" {
		query = query.Where("type = ?", movementType)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("note ILIKE ?", "%"+q+"%")
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

	var movements []models.StockMovement
	if err := query.Preload("Variant.Product").
		Preload("RefOrder").Preload("User").
		Order("created_at desc").
		Find(&movements).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"movements": movements})
}

type receiveItemRequest struct {
	VariantID string `json:"variantId"`
	Qty       int    `json:"qty"`
	Note      string `json:"note"`
}

type receiveRequest struct {
	Items []receiveItemRequest `json:"items"`
}

// ReceiveStock records incoming goods: IN movement + stock increment per
// item, one atomic unit for the whole delivery.
func (h *InventoryHandler) ReceiveStock(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req receiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "at least one item is required")
	}
	for _, item := range req.Items {
		if item.Qty <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "qty must be positive")
		}
	}

	var created []models.StockMovement
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range req.Items {
			id, err := uuid.Parse(item.VariantID)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Variant not found: "+item.VariantID)
			}

			res := tx.Model(&models.Variant{}).
				Where("id = ?", id).
				Update("stock", gorm.Expr("stock + ?", item.Qty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Variant not found: "+item.VariantID)
			}

			movement := models.StockMovement{
				VariantID: id,
				Type:      models.MovementIn,
				Qty:       item.Qty,
				UserID:    &userID,
				Note:      item.Note,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
			created = append(created, movement)
		}
		return nil
	}); err != nil {
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movements": created})
}

type adjustItemRequest struct {
	VariantID string `json:"variantId"`
	QtyDelta  int    `json:"qtyDelta"`
	Note      string `json:"note"`
}

type adjustRequest struct {
	Items []adjustItemRequest `json:"items"`
}

// AdjustStock records manual corrections as ADJUST movements with a signed
// delta applied to stock. A negative delta may not push stock below zero.
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "at least one item is required")
	}
	for _, item := range req.Items {
		if item.QtyDelta == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "qtyDelta cannot be 0")
		}
	}

	var created []models.StockMovement
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range req.Items {
			id, err := uuid.Parse(item.VariantID)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Variant not found: "+item.VariantID)
			}

			query := tx.Model(&models.Variant{}).Where("id = ?", id)
			if item.QtyDelta < 0 {
				query = query.Where("stock >= ?", -item.QtyDelta)
			}
			res := query.Update("stock", gorm.Expr("stock + ?", item.QtyDelta))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Variant not found or stock would go below zero: "+item.VariantID)
			}

			qty := item.QtyDelta
			if qty < 0 {
				qty = -qty
			}
			movement := models.StockMovement{
				VariantID: id,
				Type:      models.MovementAdjust,
				Qty:       qty,
				UserID:    &userID,
				Note:      item.Note,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
			created = append(created, movement)
		}
		return nil
	}); err != nil {
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movements": created})
}

// LowStock lists variants at or below their configured threshold.
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	var variants []models.Variant
	if err := h.db.Preload("Product").
		Where("low_stock_threshold > 0 AND stock <= low_stock_threshold").
		Order("stock asc").
		Find(&variants).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"variants": variants})
}
