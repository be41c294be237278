package reports

import (
	"time"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type branchSummary struct {
	BranchID   uint    `json:"branch_id"`
	BranchName string  `json:"branch_name"`
	Sales      float64 `json:"sales"`
	Expenses   float64 `json:"expenses"`
	Profit     float64 `json:"profit"`
	SaleCount  int64   `json:"sale_count"`
}

// SummaryHandler produces the monthly financial summary. Franchisors get
// the whole network with a per-branch breakdown; branch users get their own
// branch only. ?month= and ?year= default to the current month.
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		now := time.Now()
		year := c.QueryInt("year", now.Year())
		month := c.QueryInt("month", int(now.Month()))
		if month < 1 || month > 12 {
			return apperr.Validation("month must be between 1 and 12")
		}
		if year < 2000 || year > now.Year()+1 {
			return apperr.Validation("year is out of range")
		}

		periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
		periodEnd := periodStart.AddDate(0, 1, 0)

		var branches []models.Branch
		if sess.Role == models.RoleFranchisor {
			franchiseID, err := auth.SessionFranchiseID(sess)
			if err != nil {
				return err
			}
			if err := database.DB.
				Where("franchise_id = ? AND status = ?", franchiseID, models.BranchActive).
				Order("name ASC").Find(&branches).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Branches could not be loaded")
			}
		} else {
			branchID, err := auth.ResolveBranchID(sess, nil)
			if err != nil {
				return err
			}
			var branch models.Branch
			if err := database.DB.First(&branch, "id = ?", branchID).Error; err != nil {
				return apperr.NotFound("Branch")
			}
			branches = []models.Branch{branch}
		}

		var totalSales, totalExpenses float64
		summaries := make([]branchSummary, 0, len(branches))
		for _, b := range branches {
			var sales float64
			var saleCount int64
			database.DB.Model(&models.Sale{}).
				Where("branch_id = ? AND sale_datetime >= ? AND sale_datetime < ?", b.ID, periodStart, periodEnd).
				Count(&saleCount)
			database.DB.Model(&models.Sale{}).
				Where("branch_id = ? AND sale_datetime >= ? AND sale_datetime < ?", b.ID, periodStart, periodEnd).
				Select("COALESCE(SUM(total_amount), 0)").
				Scan(&sales)

			var expenses float64
			database.DB.Model(&models.Expense{}).
				Where("branch_id = ? AND date >= ? AND date < ?", b.ID, periodStart, periodEnd).
				Select("COALESCE(SUM(amount), 0)").
				Scan(&expenses)

			totalSales += sales
			totalExpenses += expenses
			summaries = append(summaries, branchSummary{
				BranchID:   b.ID,
				BranchName: b.Name,
				Sales:      sales,
				Expenses:   expenses,
				Profit:     sales - expenses,
				SaleCount:  saleCount,
			})
		}

		return c.JSON(fiber.Map{
			"year":           year,
			"month":          month,
			"total_sales":    totalSales,
			"total_expenses": totalExpenses,
			"total_profit":   totalSales - totalExpenses,
			"branches":       summaries,
		})
	}
}
