package models

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

// StockMovement is the immutable audit trail for every stock change. Rows are
// only ever inserted, inside the same transaction as the stock mutation they
// record; checkout and refund link back through RefOrderID.
type StockMovement struct {
	BaseModel
	VariantID  uuid.UUID    `gorm:"type:uuid;index" json:"variant_id"`
	Variant    *Variant     `json:"variant,omitempty"`
	Type       MovementType `gorm:"type:varchar(8);not null" json:"type"`
	Qty        int          `gorm:"not null" json:"qty"`
	RefOrderID *uuid.UUID   `gorm:"type:uuid;index" json:"ref_order_id"`
	RefOrder   *Order       `gorm:"foreignKey:RefOrderID" json:"ref_order,omitempty"`
	UserID     *uuid.UUID   `gorm:"type:uuid" json:"user_id"`
	User       *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Note       string       `json:"note"`
}
