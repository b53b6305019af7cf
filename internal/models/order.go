package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderRefunded  OrderStatus = "REFUNDED"
)

type DineType string

const (
	DineIn   DineType = "DINE_IN"
	Takeaway DineType = "TAKEAWAY"
)

type PaymentType string

const (
	PaymentCash    PaymentType = "CASH"
	PaymentQris    PaymentType = "QRIS"
	PaymentCard    PaymentType = "CARD"
	PaymentDeposit PaymentType = "DEPOSIT"
)

// Order is a completed checkout. Created atomically with its items, the
// matching stock decrements and the customer balance adjustments.
type Order struct {
	BaseModel
	Code        string          `gorm:"uniqueIndex;not null" json:"code"`
	Status      OrderStatus     `gorm:"type:varchar(16);not null" json:"status"`
	DineType    DineType        `gorm:"type:varchar(16);not null" json:"dine_type"`
	PaymentType PaymentType     `gorm:"type:varchar(16);not null" json:"payment_type"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	Paid        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"paid"`

	// PointsAwarded records the loyalty points granted at creation so a later
	// refund reverses exactly that amount even if the earning rule changes.
	PointsAwarded  int     `gorm:"not null;default:0" json:"points_awarded"`
	IdempotencyKey *string `gorm:"uniqueIndex" json:"-"`

	Note       string      `json:"note"`
	CustomerID *uuid.UUID  `gorm:"type:uuid;index" json:"customer_id"`
	Customer   *Customer   `json:"customer,omitempty"`
	CashierID  uuid.UUID   `gorm:"type:uuid;index" json:"cashier_id"`
	Cashier    *User       `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	ShiftID    uuid.UUID   `gorm:"type:uuid;index" json:"shift_id"`
	Shift      *Shift      `json:"shift,omitempty"`
	Items      []OrderItem `json:"items,omitempty"`
}

// Terminal reports whether the order reached a state that rejects further
// edits and refunds.
func (o *Order) Terminal() bool {
	return o.Status == OrderRefunded || o.Status == OrderCancelled
}

// OrderItem snapshots price, cost and discount at the moment of sale so later
// variant price changes never rewrite history.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	VariantID uuid.UUID       `gorm:"type:uuid;index" json:"variant_id"`
	Variant   *Variant        `json:"variant,omitempty"`
	Qty       int             `gorm:"not null" json:"qty"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Cost      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
}
