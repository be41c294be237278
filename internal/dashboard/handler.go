package dashboard

import (
	"time"

	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// MetricsHandler is the franchisor's network overview: revenue, branch
// counts and the decision queues that need attention.
func MetricsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		franchiseID, err := auth.SessionFranchiseID(sess)
		if err != nil {
			return err
		}

		now := time.Now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		var totalRevenue, monthRevenue float64
		database.DB.Model(&models.Sale{}).
			Joins("JOIN branches ON branches.id = sales.branch_id").
			Where("branches.franchise_id = ?", franchiseID).
			Select("COALESCE(SUM(sales.total_amount), 0)").
			Scan(&totalRevenue)
		database.DB.Model(&models.Sale{}).
			Joins("JOIN branches ON branches.id = sales.branch_id").
			Where("branches.franchise_id = ? AND sales.sale_datetime >= ?", franchiseID, monthStart).
			Select("COALESCE(SUM(sales.total_amount), 0)").
			Scan(&monthRevenue)

		var activeBranches, pendingApplications, pendingRequests int64
		database.DB.Model(&models.Branch{}).
			Where("franchise_id = ? AND status = ?", franchiseID, models.BranchActive).
			Count(&activeBranches)
		database.DB.Model(&models.Branch{}).
			Where("franchise_id = ? AND status = ?", franchiseID, models.BranchPending).
			Count(&pendingApplications)
		database.DB.Model(&models.StockRequest{}).
			Joins("JOIN branches ON branches.id = stock_requests.branch_id").
			Where("branches.franchise_id = ? AND stock_requests.status = ?", franchiseID, models.RequestPending).
			Count(&pendingRequests)

		return c.JSON(fiber.Map{
			"total_revenue":        totalRevenue,
			"monthly_revenue":      monthRevenue,
			"active_branches":      activeBranches,
			"pending_applications": pendingApplications,
			"pending_requests":     pendingRequests,
		})
	}
}

// BranchMetricsHandler is the scoped counterpart for branch users: their
// revenue, open requests and how many items have fallen below the reorder
// level.
func BranchMetricsHandler() fiber.Handler {
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

		now := time.Now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		var monthRevenue, todayRevenue float64
		database.DB.Model(&models.Sale{}).
			Where("branch_id = ? AND sale_datetime >= ?", branchID, monthStart).
			Select("COALESCE(SUM(total_amount), 0)").
			Scan(&monthRevenue)
		database.DB.Model(&models.Sale{}).
			Where("branch_id = ? AND sale_datetime >= ?", branchID, dayStart).
			Select("COALESCE(SUM(total_amount), 0)").
			Scan(&todayRevenue)

		var pendingRequests int64
		database.DB.Model(&models.StockRequest{}).
			Where("branch_id = ? AND status = ?", branchID, models.RequestPending).
			Count(&pendingRequests)

		// Low-stock is derived, so count it the same way IsLow() decides it.
		var lowStock int64
		database.DB.Model(&models.BranchInventory{}).
			Where("branch_id = ? AND reorder_level > 0 AND quantity <= reorder_level", branchID).
			Count(&lowStock)

		var monthExpenses float64
		database.DB.Model(&models.Expense{}).
			Where("branch_id = ? AND date >= ?", branchID, monthStart).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&monthExpenses)

		return c.JSON(fiber.Map{
			"monthly_revenue":  monthRevenue,
			"today_revenue":    todayRevenue,
			"monthly_expenses": monthExpenses,
			"pending_requests": pendingRequests,
			"low_stock_items":  lowStock,
		})
	}
}

// RecentSalesHandler lists the network's latest sales for the franchisor's
// dashboard feed.
func RecentSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		franchiseID, err := auth.SessionFranchiseID(sess)
		if err != nil {
			return err
		}

		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		var sales []models.Sale
		if err := database.DB.Preload("Branch").
			Joins("JOIN branches ON branches.id = sales.branch_id").
			Where("branches.franchise_id = ?", franchiseID).
			Order("sales.sale_datetime DESC").
			Limit(limit).
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Recent sales could not be listed")
		}

		out := make([]fiber.Map, 0, len(sales))
		for _, s := range sales {
			out = append(out, fiber.Map{
				"id":            s.ID,
				"branch_id":     s.BranchID,
				"branch_name":   s.Branch.Name,
				"total_amount":  s.TotalAmount,
				"payment_mode":  s.PaymentMode,
				"sale_datetime": s.SaleDatetime,
			})
		}

		return c.JSON(out)
	}
}
