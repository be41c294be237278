package models

import "time"

// StockItem is franchise-wide reference data; branches hold quantities of it
// through BranchInventory rows.
type StockItem struct {
	ID          uint `gorm:"primaryKey"`
	FranchiseID uint `gorm:"index;not null"`
	Franchise   Franchise
	Name        string `gorm:"size:255;not null"`
	Unit        string `gorm:"size:20;not null"` // kg, pcs, box etc.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
