package models

import "time"

type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentCard   PaymentMode = "card"
	PaymentOnline PaymentMode = "online"
)

func (p PaymentMode) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentOnline:
		return true
	}
	return false
}

// Sale is immutable once created; corrections are new offsetting sales.
// TotalAmount is always the server-computed sum of line totals.
type Sale struct {
	ID           uint `gorm:"primaryKey"`
	BranchID     uint `gorm:"index;not null"`
	Branch       Branch
	SoldByUserID *uint
	SaleDatetime time.Time   `gorm:"index;not null"`
	PaymentMode  PaymentMode `gorm:"size:20;not null"`
	TotalAmount  float64     `gorm:"not null"`
	CreatedAt    time.Time

	Lines []SaleLine `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

type SaleLine struct {
	ID        uint `gorm:"primaryKey"`
	SaleID    uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"not null"`
	LineTotal float64 `gorm:"not null"`
}
