package sales

import (
	"time"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/franchise"
	"franchise-backend/internal/inventory"
	"franchise-backend/internal/logger"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SaleLineInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type PostSaleRequest struct {
	BranchID     *uint           `json:"branch_id"`
	PaymentMode  string          `json:"payment_mode"`
	SaleDatetime *time.Time      `json:"sale_datetime"`
	Lines        []SaleLineInput `json:"lines"`
}

// PostSaleHandler records a sale for an ACTIVE branch. Unit prices come from
// the product catalog, never from the caller; lines of stock-linked products
// deduct branch inventory in the same transaction. One short item fails the
// whole sale and leaves every quantity untouched.
func PostSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		var body PostSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}
		if len(body.Lines) == 0 {
			return apperr.Validation("At least one sale line is required")
		}

		mode := models.PaymentMode(body.PaymentMode)
		if mode == "" {
			mode = models.PaymentCash
		}
		if !mode.Valid() {
			return apperr.Validation("payment_mode must be cash, card or online")
		}

		branchID, err := auth.ResolveBranchID(sess, body.BranchID)
		if err != nil {
			return err
		}
		if err := auth.Authorize(sess, []models.UserRole{models.RoleBranchOwner, models.RoleManager, models.RoleStaff}, branchID); err != nil {
			return err
		}
		branch, err := franchise.RequireActiveBranch(branchID)
		if err != nil {
			return err
		}

		saleAt := time.Now()
		if body.SaleDatetime != nil {
			if body.SaleDatetime.After(time.Now().Add(time.Minute)) {
				return apperr.Validation("sale_datetime cannot be in the future")
			}
			saleAt = *body.SaleDatetime
		}

		// Resolve prices and build lines before opening the transaction;
		// only quantity checks need the lock.
		seen := make(map[uint]bool, len(body.Lines))
		lines := make([]models.SaleLine, 0, len(body.Lines))
		stockLinks := make([]*uint, 0, len(body.Lines)) // per line, nil when not inventory-linked
		total := 0.0
		for _, in := range body.Lines {
			if in.ProductID == 0 {
				return apperr.Validation("product_id is required on every line")
			}
			if in.Quantity <= 0 {
				return apperr.Validation("Line quantities must be positive")
			}
			if seen[in.ProductID] {
				return apperr.Validation("Duplicate product in sale")
			}
			seen[in.ProductID] = true

			var product models.Product
			if err := database.DB.First(&product, "id = ? AND franchise_id = ?", in.ProductID, branch.FranchiseID).Error; err != nil {
				return apperr.NotFound("Product")
			}
			if !product.IsActive {
				return apperr.Validation("Product is not available for sale")
			}

			lineTotal := product.BasePrice * float64(in.Quantity)
			total += lineTotal
			lines = append(lines, models.SaleLine{
				ProductID: product.ID,
				Quantity:  in.Quantity,
				UnitPrice: product.BasePrice,
				LineTotal: lineTotal,
			})
			stockLinks = append(stockLinks, product.StockItemID)
		}

		userID := sess.UserID
		sale := models.Sale{
			BranchID:     branchID,
			SoldByUserID: &userID,
			SaleDatetime: saleAt,
			PaymentMode:  mode,
			TotalAmount:  total,
			Lines:        lines,
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not start transaction")
		}
		if err := tx.Create(&sale).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Sale could not be created")
		}

		deductions := make([]inventory.Deduction, 0, len(sale.Lines))
		for i, line := range sale.Lines {
			if stockLinks[i] == nil {
				continue
			}
			lineID := line.ID
			deductions = append(deductions, inventory.Deduction{
				StockItemID:     *stockLinks[i],
				Quantity:        float64(line.Quantity),
				RelatedSaleLine: &lineID,
			})
		}
		if len(deductions) > 0 {
			if err := inventory.Deduct(tx, branchID, &userID, deductions); err != nil {
				tx.Rollback()
				if _, ok := apperr.AsError(err); ok {
					return err
				}
				return fiber.NewError(fiber.StatusInternalServerError, "Inventory could not be deducted")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transaction could not be committed")
		}

		logger.L.Infow("sale posted",
			"sale_id", sale.ID, "branch_id", branchID, "total", total, "lines", len(lines))

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":           sale.ID,
			"branch_id":    sale.BranchID,
			"total_amount": sale.TotalAmount,
			"payment_mode": sale.PaymentMode,
			"lines":        sale.Lines,
		})
	}
}

// ListSalesHandler returns sales for a branch, newest first. Franchisors
// pass ?branch_id=; ?from= and ?to= (YYYY-MM-DD) bound the range.
func ListSalesHandler() fiber.Handler {
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
		if err := auth.Authorize(sess, []models.UserRole{models.RoleFranchisor, models.RoleBranchOwner, models.RoleManager, models.RoleStaff}, branchID); err != nil {
			return err
		}

		query := database.DB.Preload("Lines.Product").Where("branch_id = ?", branchID)
		if from := c.Query("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return apperr.Validation("from must be YYYY-MM-DD")
			}
			query = query.Where("sale_datetime >= ?", t)
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return apperr.Validation("to must be YYYY-MM-DD")
			}
			query = query.Where("sale_datetime < ?", t.AddDate(0, 0, 1))
		}

		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		var sales []models.Sale
		if err := query.Order("sale_datetime DESC").Limit(limit).Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sales could not be listed")
		}

		return c.JSON(sales)
	}
}
