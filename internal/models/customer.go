package models

import "github.com/shopspring/decimal"

// Customer carries the loyalty balances. Deposit is a prepaid balance usable
// as a payment method; the business allows it to go negative (customers may
// run a tab), so no non-negative constraint exists on it.
type Customer struct {
	BaseModel
	Name    string          `json:"name"`
	Phone   *string         `gorm:"uniqueIndex" json:"phone"`
	Email   *string         `gorm:"uniqueIndex" json:"email"`
	Points  int             `gorm:"not null;default:0" json:"points"`
	Deposit decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"deposit"`
	Orders  []Order         `json:"orders,omitempty"`
}
