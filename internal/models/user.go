package models

// Role controls which endpoints a user may reach.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleKasir   Role = "KASIR"
	RoleBarista Role = "BARISTA"
)

// User represents a staff account (cashier, barista or admin).
type User struct {
	BaseModel
	Name         string  `json:"name"`
	Email        string  `gorm:"uniqueIndex" json:"email"`
	Phone        string  `json:"phone"`
	PasswordHash string  `json:"-"`
	Role         Role    `gorm:"type:varchar(16);not null;default:'KASIR'" json:"role"`
	Shifts       []Shift `gorm:"foreignKey:CashierID" json:"shifts,omitempty"`
	Orders       []Order `gorm:"foreignKey:CashierID" json:"orders,omitempty"`
}
