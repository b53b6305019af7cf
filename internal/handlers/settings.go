package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/kopipos/internal/models"
	"github.com/example/kopipos/internal/services"
)

// SettingHandler manages store-level key/value settings plus the simple
// JSON backup/restore of the catalog and customer base.
type SettingHandler struct {
	db    *gorm.DB
	cache *services.Cache
}

// NewSettingHandler constructs SettingHandler.
func NewSettingHandler(db *gorm.DB, cache *services.Cache) *SettingHandler {
	return &SettingHandler{db: db, cache: cache}
}

func (h *SettingHandler) settingsMap() (map[string]models.JSONValue, error) {
	var rows []models.Setting
	if err := h.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]models.JSONValue, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// ListSettings returns all settings as a key/value map.
func (h *SettingHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.settingsMap()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"settings": settings})
}

// GetSetting returns a single key, null when unset.
func (h *SettingHandler) GetSetting(c *fiber.Ctx) error {
	key := c.Params("key")

	var row models.Setting
	err := h.db.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{"key": key, "value": nil})
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"key": key, "value": row.Value})
}

// UpsertSettings writes multiple keys in one transaction and returns the full
// map.
func (h *SettingHandler) UpsertSettings(c *fiber.Ctx) error {
	var payload map[string]json.RawMessage
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range payload {
			row := models.Setting{Key: key, Value: models.JSONValue(value)}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	settings, err := h.settingsMap()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"settings": settings})
}

type backupPayload struct {
	Version    int        `json:"version"`
	ExportedAt time.Time  `json:"exported_at"`
	Data       backupData `json:"data"`
}

type backupData struct {
	Settings  []models.Setting  `json:"settings"`
	Products  []models.Product  `json:"products"`
	Variants  []models.Variant  `json:"variants"`
	Customers []models.Customer `json:"customers"`
}

// ExportBackup dumps settings, catalog and customers as a JSON attachment.
// Orders and the movement ledger are deliberately left out of this simple
// backup.
func (h *SettingHandler) ExportBackup(c *fiber.Ctx) error {
	var data backupData
	if err := h.db.Find(&data.Settings).Error; err != nil {
		return err
	}
	if err := h.db.Find(&data.Products).Error; err != nil {
		return err
	}
	if err := h.db.Find(&data.Variants).Error; err != nil {
		return err
	}
	if err := h.db.Find(&data.Customers).Error; err != nil {
		return err
	}

	payload := backupPayload{
		Version:    1,
		ExportedAt: time.Now(),
		Data:       data,
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="pos-backup-%d.json"`, time.Now().UnixMilli()))
	return c.JSON(payload)
}

// RestoreBackup upserts a previously exported backup.
func (h *SettingHandler) RestoreBackup(c *fiber.Ctx) error {
	var payload backupPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Version != 1 {
		return fiber.NewError(fiber.StatusBadRequest, "unsupported backup version")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, s := range payload.Data.Settings {
			row := models.Setting{Key: s.Key, Value: s.Value}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		for _, p := range payload.Data.Products {
			p.Variants = nil
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "category", "description", "image_url", "is_active", "updated_at"}),
			}).Create(&p).Error; err != nil {
				return err
			}
		}
		for _, v := range payload.Data.Variants {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"label", "price", "cost", "sku", "stock", "low_stock_threshold", "updated_at"}),
			}).Create(&v).Error; err != nil {
				return err
			}
		}
		for _, cust := range payload.Data.Customers {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "email", "points", "deposit", "updated_at"}),
			}).Create(&cust).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return c.JSON(fiber.Map{"ok": true})
}
