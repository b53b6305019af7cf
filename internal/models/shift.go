package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift is a cashier's open/close session. ClosedAt stays nil while the shift
// is active; at most one active shift exists per cashier.
type Shift struct {
	BaseModel
	CashierID   uuid.UUID        `gorm:"type:uuid;index" json:"cashier_id"`
	Cashier     *User            `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	OpenedAt    time.Time        `json:"opened_at"`
	ClosedAt    *time.Time       `json:"closed_at"`
	OpeningCash decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"opening_cash"`
	ClosingCash *decimal.Decimal `gorm:"type:decimal(12,2)" json:"closing_cash"`
	Notes       string           `json:"notes"`
}
