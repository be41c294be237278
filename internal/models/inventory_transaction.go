package models

import "time"

type TransactionType string

const (
	TransactionIn         TransactionType = "IN"
	TransactionOut        TransactionType = "OUT"
	TransactionAdjustment TransactionType = "ADJUSTMENT"
)

// InventoryTransaction is the append-only ledger behind BranchInventory:
// one row per delivery, sale deduction or adjustment. Replaying the
// quantity_change column for a (branch, item) pair reproduces the quantity.
type InventoryTransaction struct {
	ID              uint `gorm:"primaryKey"`
	BranchID        uint `gorm:"index;not null"`
	Branch          Branch
	StockItemID     uint `gorm:"index;not null"`
	StockItem       StockItem
	Type            TransactionType `gorm:"size:20;not null"`
	QuantityChange  float64         `gorm:"not null"` // negative for OUT
	UnitCost        *float64
	RelatedSaleLine *uint
	CreatedByUserID *uint
	Note            string `gorm:"size:255"`
	CreatedAt       time.Time
}
