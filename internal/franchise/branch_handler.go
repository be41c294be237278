package franchise

import (
	"strings"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListBranchesHandler returns all branches of the caller's franchise,
// optionally filtered by ?status=. Franchisor only.
func ListBranchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		franchiseID, err := auth.SessionFranchiseID(sess)
		if err != nil {
			return err
		}

		query := database.DB.Where("franchise_id = ?", franchiseID)
		if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
			query = query.Where("status = ?", status)
		}

		var branches []models.Branch
		if err := query.Order("name ASC").Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Branches could not be listed")
		}

		return c.JSON(branches)
	}
}

// BranchProfileHandler shows a branch user their own branch together with
// its team. Franchisors pass ?branch_id= to inspect any branch.
func BranchProfileHandler() fiber.Handler {
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

		var branch models.Branch
		if err := database.DB.Preload("Franchise").First(&branch, "id = ?", branchID).Error; err != nil {
			return apperr.NotFound("Branch")
		}

		var team []models.User
		database.DB.
			Select("id", "name", "email", "role", "is_active").
			Where("branch_id = ?", branchID).
			Order("role ASC, name ASC").
			Find(&team)

		members := make([]fiber.Map, 0, len(team))
		for _, u := range team {
			members = append(members, fiber.Map{
				"id":        u.ID,
				"name":      u.Name,
				"email":     u.Email,
				"role":      u.Role,
				"is_active": u.IsActive,
			})
		}

		return c.JSON(fiber.Map{
			"id":               branch.ID,
			"name":             branch.Name,
			"location":         branch.Location,
			"status":           branch.Status,
			"rejection_reason": branch.RejectionReason,
			"brand_name":       branch.Franchise.BrandName,
			"team":             members,
		})
	}
}

type UpdateBranchRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

// UpdateBranchHandler edits an ACTIVE branch's display fields. Franchisors
// may edit any branch of their brand, owners only their own.
func UpdateBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validation("Invalid branch id")
		}

		if err := auth.Authorize(sess, []models.UserRole{models.RoleFranchisor, models.RoleBranchOwner}, uint(id)); err != nil {
			return err
		}

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return apperr.NotFound("Branch")
		}
		if sess.Role == models.RoleFranchisor {
			franchiseID, err := auth.SessionFranchiseID(sess)
			if err != nil {
				return err
			}
			if branch.FranchiseID != franchiseID {
				return apperr.NotFound("Branch")
			}
		}
		if branch.Status != models.BranchActive {
			return apperr.InvalidState("Only active branches can be edited")
		}

		var body UpdateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return apperr.Validation("name cannot be empty")
			}
			branch.Name = name
		}
		if body.Location != nil {
			location := strings.TrimSpace(*body.Location)
			if location == "" {
				return apperr.Validation("location cannot be empty")
			}
			branch.Location = location
		}

		if err := database.DB.Save(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Branch could not be updated")
		}

		return c.JSON(branch)
	}
}
