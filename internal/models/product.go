package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a menu entry. Everything sellable hangs off its variants.
type Product struct {
	BaseModel
	Name        string    `gorm:"uniqueIndex" json:"name"`
	Category    string    `gorm:"index" json:"category"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	Variants    []Variant `json:"variants,omitempty"`
}

// Variant is a purchasable SKU of a product (e.g. "Hot - M") with its own
// price and stock. Stock is only ever mutated by checkout, refund and the
// inventory receive/adjust endpoints, and every change leaves a StockMovement.
type Variant struct {
	BaseModel
	ProductID         uuid.UUID       `gorm:"type:uuid;index" json:"product_id"`
	Product           *Product        `json:"product,omitempty"`
	Label             string          `json:"label"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Cost              decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost"`
	SKU               *string         `gorm:"uniqueIndex" json:"sku"`
	Stock             int             `gorm:"not null;default:0" json:"stock"`
	LowStockThreshold int             `gorm:"default:0" json:"low_stock_threshold"`
}
