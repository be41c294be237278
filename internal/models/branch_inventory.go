package models

import "time"

// BranchInventory is the per-(branch, stock item) quantity row. Quantity is
// mutated only by delivery postings (+) and sale deductions (-) and never
// goes negative.
type BranchInventory struct {
	ID          uint `gorm:"primaryKey"`
	BranchID    uint `gorm:"not null;uniqueIndex:idx_branch_stock_item"`
	Branch      Branch
	StockItemID uint `gorm:"not null;uniqueIndex:idx_branch_stock_item"`
	StockItem   StockItem
	Quantity    float64 `gorm:"not null;default:0"`
	// ReorderLevel = 0 means "no threshold configured".
	ReorderLevel float64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLow reports whether the item has fallen to or below its reorder level.
// Derived at read time, never stored.
func (b BranchInventory) IsLow() bool {
	return b.ReorderLevel > 0 && b.Quantity <= b.ReorderLevel
}
