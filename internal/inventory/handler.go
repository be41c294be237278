package inventory

import (
	"franchise-backend/internal/apperr"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/franchise"
	"franchise-backend/internal/logger"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type InventoryRow struct {
	ID           uint    `json:"id"`
	BranchID     uint    `json:"branch_id"`
	StockItemID  uint    `json:"stock_item_id"`
	ItemName     string  `json:"item_name"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	ReorderLevel float64 `json:"reorder_level"`
	IsLow        bool    `json:"is_low"`
}

// ListInventoryHandler returns a branch's current quantities with the
// low-stock flag derived on the way out. ?low=true narrows to flagged rows.
func ListInventoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		branchID, err := auth.ResolveBranchID(sess, auth.QueryBranchID(c))
		if err != nil {
			return err
		}
		if err := auth.AuthorizeBranchScope(sess, branchID); err != nil {
			return err
		}

		var rows []models.BranchInventory
		if err := database.DB.Preload("StockItem").
			Where("branch_id = ?", branchID).
			Order("stock_item_id ASC").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Inventory could not be listed")
		}

		lowOnly := c.QueryBool("low", false)
		out := make([]InventoryRow, 0, len(rows))
		for _, r := range rows {
			if lowOnly && !r.IsLow() {
				continue
			}
			out = append(out, InventoryRow{
				ID:           r.ID,
				BranchID:     r.BranchID,
				StockItemID:  r.StockItemID,
				ItemName:     r.StockItem.Name,
				Unit:         r.StockItem.Unit,
				Quantity:     r.Quantity,
				ReorderLevel: r.ReorderLevel,
				IsLow:        r.IsLow(),
			})
		}

		return c.JSON(out)
	}
}

type CreateInventoryRequest struct {
	BranchID     *uint   `json:"branch_id"`
	StockItemID  uint    `json:"stock_item_id"`
	ReorderLevel float64 `json:"reorder_level"`
}

// CreateInventoryHandler registers a (branch, item) row at quantity zero so
// a reorder level can be configured before the first delivery arrives.
func CreateInventoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		var body CreateInventoryRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}
		if body.StockItemID == 0 {
			return apperr.Validation("stock_item_id is required")
		}
		if body.ReorderLevel < 0 {
			return apperr.Validation("reorder_level cannot be negative")
		}

		branchID, err := auth.ResolveBranchID(sess, body.BranchID)
		if err != nil {
			return err
		}
		if err := auth.Authorize(sess, []models.UserRole{models.RoleFranchisor, models.RoleBranchOwner, models.RoleManager}, branchID); err != nil {
			return err
		}
		if err := auth.AuthorizeBranchScope(sess, branchID); err != nil {
			return err
		}
		branch, err := franchise.RequireActiveBranch(branchID)
		if err != nil {
			return err
		}

		var item models.StockItem
		if err := database.DB.First(&item, "id = ? AND franchise_id = ?", body.StockItemID, branch.FranchiseID).Error; err != nil {
			return apperr.NotFound("Stock item")
		}

		var count int64
		database.DB.Model(&models.BranchInventory{}).
			Where("branch_id = ? AND stock_item_id = ?", branchID, body.StockItemID).
			Count(&count)
		if count > 0 {
			return apperr.Conflict("Inventory record already exists for this item")
		}

		row := models.BranchInventory{
			BranchID:     branchID,
			StockItemID:  body.StockItemID,
			Quantity:     0,
			ReorderLevel: body.ReorderLevel,
		}
		if err := database.DB.Create(&row).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Inventory record could not be created")
		}

		return c.Status(fiber.StatusCreated).JSON(row)
	}
}

type StockInRequest struct {
	BranchID    *uint    `json:"branch_id"`
	StockItemID uint     `json:"stock_item_id"`
	Quantity    float64  `json:"quantity"`
	UnitCost    *float64 `json:"unit_cost"`
	Note        string   `json:"note"`
}

// StockInHandler posts a direct delivery to a branch, outside the request
// workflow (supplier drop-offs, opening stock).
func StockInHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		var body StockInRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}
		if body.StockItemID == 0 {
			return apperr.Validation("stock_item_id is required")
		}
		if body.Quantity <= 0 {
			return apperr.Validation("quantity must be positive")
		}

		branchID, err := auth.ResolveBranchID(sess, body.BranchID)
		if err != nil {
			return err
		}
		if err := auth.Authorize(sess, []models.UserRole{models.RoleFranchisor, models.RoleBranchOwner, models.RoleManager}, branchID); err != nil {
			return err
		}
		if err := auth.AuthorizeBranchScope(sess, branchID); err != nil {
			return err
		}
		branch, err := franchise.RequireActiveBranch(branchID)
		if err != nil {
			return err
		}

		var item models.StockItem
		if err := database.DB.First(&item, "id = ? AND franchise_id = ?", body.StockItemID, branch.FranchiseID).Error; err != nil {
			return apperr.NotFound("Stock item")
		}

		userID := sess.UserID
		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not start transaction")
		}
		if err := PostDeliveries(tx, branchID, &userID, []Delivery{{
			StockItemID: body.StockItemID,
			Quantity:    body.Quantity,
			UnitCost:    body.UnitCost,
			Note:        body.Note,
		}}); err != nil {
			tx.Rollback()
			if _, ok := apperr.AsError(err); ok {
				return err
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Delivery could not be posted")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transaction could not be committed")
		}

		logger.L.Infow("stock-in posted",
			"branch_id", branchID, "stock_item_id", body.StockItemID,
			"quantity", body.Quantity, "by_user", sess.UserID)

		var row models.BranchInventory
		database.DB.Where("branch_id = ? AND stock_item_id = ?", branchID, body.StockItemID).First(&row)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"branch_id":     branchID,
			"stock_item_id": body.StockItemID,
			"quantity":      row.Quantity,
		})
	}
}

// ListTransactionsHandler exposes the ledger for a branch, newest first,
// optionally narrowed to one item with ?stock_item_id=.
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		branchID, err := auth.ResolveBranchID(sess, auth.QueryBranchID(c))
		if err != nil {
			return err
		}
		if err := auth.AuthorizeBranchScope(sess, branchID); err != nil {
			return err
		}

		query := database.DB.Preload("StockItem").Where("branch_id = ?", branchID)
		if itemID := c.QueryInt("stock_item_id", 0); itemID > 0 {
			query = query.Where("stock_item_id = ?", itemID)
		}

		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		var entries []models.InventoryTransaction
		if err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transactions could not be listed")
		}

		return c.JSON(entries)
	}
}
