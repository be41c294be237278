package expense

import (
	"strings"
	"time"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/franchise"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListExpensesHandler returns a branch's expenses, newest first, optionally
// bounded with ?from= / ?to= (YYYY-MM-DD).
func ListExpensesHandler() fiber.Handler {
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

		query := database.DB.Where("branch_id = ?", branchID)
		if from := c.Query("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return apperr.Validation("from must be YYYY-MM-DD")
			}
			query = query.Where("date >= ?", t)
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return apperr.Validation("to must be YYYY-MM-DD")
			}
			query = query.Where("date < ?", t.AddDate(0, 0, 1))
		}

		var expenses []models.Expense
		if err := query.Order("date DESC").Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Expenses could not be listed")
		}

		return c.JSON(expenses)
	}
}

type CreateExpenseRequest struct {
	BranchID    *uint   `json:"branch_id"`
	Date        string  `json:"date"` // YYYY-MM-DD, defaults to today
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// CreateExpenseHandler records an operating expense against an ACTIVE
// branch. Owner or manager only.
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}
		if body.Amount <= 0 {
			return apperr.Validation("amount must be positive")
		}

		date := time.Now()
		if body.Date != "" {
			parsed, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return apperr.Validation("date must be YYYY-MM-DD")
			}
			date = parsed
		}

		branchID, err := auth.ResolveBranchID(sess, body.BranchID)
		if err != nil {
			return err
		}
		if err := auth.Authorize(sess, []models.UserRole{models.RoleBranchOwner, models.RoleManager}, branchID); err != nil {
			return err
		}
		if _, err := franchise.RequireActiveBranch(branchID); err != nil {
			return err
		}

		userID := sess.UserID
		expense := models.Expense{
			BranchID:        branchID,
			Date:            date,
			Category:        strings.TrimSpace(body.Category),
			Description:     strings.TrimSpace(body.Description),
			Amount:          body.Amount,
			CreatedByUserID: &userID,
		}
		if err := database.DB.Create(&expense).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Expense could not be created")
		}

		return c.Status(fiber.StatusCreated).JSON(expense)
	}
}
