package inventory

import (
	"errors"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Delivery is one incoming quantity for a (branch, item) pair.
type Delivery struct {
	StockItemID uint
	Quantity    float64
	UnitCost    *float64
	Note        string
}

// Deduction is one outgoing quantity, optionally tied to the sale line that
// caused it.
type Deduction struct {
	StockItemID     uint
	Quantity        float64
	RelatedSaleLine *uint
}

// PostDeliveries applies incoming stock to a branch inside the caller's
// transaction. Each touched inventory row is locked FOR UPDATE; missing rows
// are created on first delivery. One IN ledger row is written per delivery.
func PostDeliveries(tx *gorm.DB, branchID uint, userID *uint, deliveries []Delivery) error {
	for _, d := range deliveries {
		if d.Quantity <= 0 {
			return apperr.Validation("Delivery quantity must be positive")
		}

		var row models.BranchInventory
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("branch_id = ? AND stock_item_id = ?", branchID, d.StockItemID).
			First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = models.BranchInventory{
				BranchID:    branchID,
				StockItemID: d.StockItemID,
				Quantity:    d.Quantity,
			}
			if err := tx.Create(&row).Error; err != nil {
				// Two first deliveries for the same item can race past the
				// locked read; the loser hits the unique index.
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict("Inventory row was created concurrently, retry the delivery")
				}
				return err
			}
		case err != nil:
			return err
		default:
			row.Quantity += d.Quantity
			if err := tx.Model(&models.BranchInventory{}).
				Where("id = ?", row.ID).
				Update("quantity", row.Quantity).Error; err != nil {
				return err
			}
		}

		entry := models.InventoryTransaction{
			BranchID:        branchID,
			StockItemID:     d.StockItemID,
			Type:            models.TransactionIn,
			QuantityChange:  d.Quantity,
			UnitCost:        d.UnitCost,
			CreatedByUserID: userID,
			Note:            d.Note,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// Deduct removes stock from a branch inside the caller's transaction.
// Every touched row is locked FOR UPDATE and checked before any write, so a
// single short line fails the whole batch and no partial deduction survives.
// One OUT ledger row (negative quantity_change) is written per deduction.
func Deduct(tx *gorm.DB, branchID uint, userID *uint, deductions []Deduction) error {
	for _, d := range deductions {
		if d.Quantity <= 0 {
			return apperr.Validation("Deduction quantity must be positive")
		}

		var row models.BranchInventory
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("branch_id = ? AND stock_item_id = ?", branchID, d.StockItemID).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.InsufficientStock(d.StockItemID)
		}
		if err != nil {
			return err
		}

		if row.Quantity < d.Quantity {
			return apperr.InsufficientStock(d.StockItemID)
		}

		if err := tx.Model(&models.BranchInventory{}).
			Where("id = ?", row.ID).
			Update("quantity", row.Quantity-d.Quantity).Error; err != nil {
			return err
		}

		entry := models.InventoryTransaction{
			BranchID:        branchID,
			StockItemID:     d.StockItemID,
			Type:            models.TransactionOut,
			QuantityChange:  -d.Quantity,
			RelatedSaleLine: d.RelatedSaleLine,
			CreatedByUserID: userID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// Adjust sets a row's quantity to an explicit value, recording the delta as
// an ADJUSTMENT ledger entry. Used for corrections, never by sales.
func Adjust(tx *gorm.DB, branchID uint, userID *uint, stockItemID uint, newQuantity float64, note string) error {
	if newQuantity < 0 {
		return apperr.Validation("Quantity cannot be negative")
	}

	var row models.BranchInventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND stock_item_id = ?", branchID, stockItemID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Inventory record")
	}
	if err != nil {
		return err
	}

	delta := newQuantity - row.Quantity
	if delta == 0 {
		return nil
	}

	if err := tx.Model(&models.BranchInventory{}).
		Where("id = ?", row.ID).
		Update("quantity", newQuantity).Error; err != nil {
		return err
	}

	entry := models.InventoryTransaction{
		BranchID:        branchID,
		StockItemID:     stockItemID,
		Type:            models.TransactionAdjustment,
		QuantityChange:  delta,
		CreatedByUserID: userID,
		Note:            note,
	}
	return tx.Create(&entry).Error
}
