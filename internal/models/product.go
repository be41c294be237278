package models

import "time"

// Product is the franchise-wide sellable catalog. Prices live here and only
// here: sale lines always resolve their unit price from BasePrice, never from
// the caller. A product may be linked to a StockItem, in which case selling
// it deducts branch inventory.
type Product struct {
	ID          uint `gorm:"primaryKey"`
	FranchiseID uint `gorm:"index;not null"`
	Franchise   Franchise
	Name        string  `gorm:"size:255;not null"`
	BasePrice   float64 `gorm:"not null"`
	StockItemID *uint   `gorm:"index"`
	StockItem   *StockItem
	IsActive    bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
