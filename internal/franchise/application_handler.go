package franchise

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/audit"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/config"
	"franchise-backend/internal/database"
	"franchise-backend/internal/logger"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var allowedDocumentExt = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".doc":  true,
	".docx": true,
}

// SubmitApplicationHandler accepts a public multipart franchise application.
// It creates the PENDING branch together with its (not yet operational)
// BRANCH_OWNER account; the branch stays unusable until a franchisor
// approves it.
func SubmitApplicationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		franchiseIDRaw := strings.TrimSpace(c.FormValue("franchise_id"))
		branchName := strings.TrimSpace(c.FormValue("branch_name"))
		location := strings.TrimSpace(c.FormValue("location"))
		ownerName := strings.TrimSpace(c.FormValue("owner_name"))
		email := strings.TrimSpace(strings.ToLower(c.FormValue("email")))
		phone := c.FormValue("phone")
		password := c.FormValue("password")

		if franchiseIDRaw == "" || branchName == "" || location == "" || ownerName == "" || email == "" || password == "" {
			return apperr.Validation("franchise_id, branch_name, location, owner_name, email and password are required")
		}

		var franchiseID uint
		if _, err := fmt.Sscanf(franchiseIDRaw, "%d", &franchiseID); err != nil || franchiseID == 0 {
			return apperr.Validation("franchise_id must be a positive integer")
		}

		var franchise models.Franchise
		if err := database.DB.First(&franchise, "id = ?", franchiseID).Error; err != nil {
			return apperr.NotFound("Franchise")
		}

		if err := auth.ValidateEmail(email); err != nil {
			return err
		}
		if err := auth.ValidatePassword(password); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			return apperr.Conflict("Email is already registered")
		}

		investment := c.FormValue("investment_capacity")
		var investmentCapacity float64
		if investment != "" {
			if _, err := fmt.Sscanf(investment, "%f", &investmentCapacity); err != nil || investmentCapacity < 0 {
				return apperr.Validation("investment_capacity must be a non-negative number")
			}
		}

		var expectedOpening *time.Time
		if raw := strings.TrimSpace(c.FormValue("expected_opening_date")); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return apperr.Validation("expected_opening_date must be YYYY-MM-DD")
			}
			expectedOpening = &parsed
		}

		// The supporting document is optional; when present it is stored
		// under a random name so uploads can never collide or traverse.
		documentRef := ""
		if file, err := c.FormFile("document"); err == nil && file != nil {
			ext := strings.ToLower(filepath.Ext(file.Filename))
			if !allowedDocumentExt[ext] {
				return apperr.Validation("Unsupported document type")
			}
			documentRef = uuid.NewString() + ext
			dest := filepath.Join(config.C.UploadDir, documentRef)
			if err := c.SaveFile(file, dest); err != nil {
				logger.L.Errorw("application document could not be saved", "error", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Document could not be saved")
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Password could not be hashed")
		}

		branch := models.Branch{
			FranchiseID:         franchise.ID,
			Name:                branchName,
			Location:            location,
			OwnerName:           ownerName,
			Status:              models.BranchPending,
			PropertySize:        strings.TrimSpace(c.FormValue("property_size")),
			InvestmentCapacity:  investmentCapacity,
			BusinessExperience:  strings.TrimSpace(c.FormValue("business_experience")),
			ReasonForFranchise:  strings.TrimSpace(c.FormValue("reason_for_franchise")),
			ExpectedOpeningDate: expectedOpening,
			DocumentRef:         documentRef,
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not start transaction")
		}
		if err := tx.Create(&branch).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Application could not be created")
		}
		owner := models.User{
			BranchID:     &branch.ID,
			Name:         ownerName,
			Email:        email,
			Phone:        auth.SanitizePhone(phone),
			PasswordHash: string(hash),
			Role:         models.RoleBranchOwner,
			IsActive:     true,
		}
		if err := tx.Create(&owner).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Owner account could not be created")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transaction could not be committed")
		}

		logger.L.Infow("franchise application submitted",
			"branch_id", branch.ID, "franchise_id", franchise.ID, "owner_user_id", owner.ID)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"application_id": branch.ID,
			"status":         branch.Status,
			"message":        "Application received and pending review",
		})
	}
}

// ListApplicationsHandler returns branch applications for the franchisor,
// optionally filtered by ?status=.
func ListApplicationsHandler() fiber.Handler {
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
			switch models.BranchStatus(status) {
			case models.BranchPending, models.BranchActive, models.BranchRejected:
				query = query.Where("status = ?", status)
			default:
				return apperr.Validation("status must be PENDING, ACTIVE or REJECTED")
			}
		}

		var branches []models.Branch
		if err := query.Order("created_at DESC").Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Applications could not be listed")
		}

		return c.JSON(branches)
	}
}

// GetApplicationHandler returns one application with its full review trail.
func GetApplicationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		franchiseID, err := auth.SessionFranchiseID(sess)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validation("Invalid application id")
		}

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ? AND franchise_id = ?", id, franchiseID).Error; err != nil {
			return apperr.NotFound("Application")
		}

		return c.JSON(branch)
	}
}

// ApproveApplicationHandler moves a PENDING application to ACTIVE. Approving
// an already ACTIVE branch is a no-op that reports the current state;
// approving a REJECTED one is refused.
func ApproveApplicationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validation("Invalid application id")
		}

		franchiseID, err := auth.SessionFranchiseID(sess)
		if err != nil {
			return err
		}

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ? AND franchise_id = ?", id, franchiseID).Error; err != nil {
			return apperr.NotFound("Application")
		}

		switch branch.Status {
		case models.BranchActive:
			// Repeated approval must not error, so a double click or a
			// retried request stays harmless.
			return c.JSON(fiber.Map{"id": branch.ID, "status": branch.Status})
		case models.BranchRejected:
			return apperr.InvalidState("A rejected application cannot be approved")
		}

		before := fiber.Map{"status": branch.Status}
		// Guard on PENDING so a concurrent reject cannot be overwritten; a
		// rejected application stays rejected.
		decide := database.DB.Model(&models.Branch{}).
			Where("id = ? AND status = ?", branch.ID, models.BranchPending).
			Updates(map[string]any{"status": models.BranchActive, "rejection_reason": ""})
		if decide.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Application could not be approved")
		}
		if decide.RowsAffected == 0 {
			var current models.Branch
			if err := database.DB.First(&current, "id = ?", branch.ID).Error; err != nil {
				return apperr.NotFound("Application")
			}
			if current.Status == models.BranchActive {
				return c.JSON(fiber.Map{"id": current.ID, "status": current.Status})
			}
			return apperr.Conflict("Application was decided by another user")
		}
		branch.Status = models.BranchActive
		branch.RejectionReason = ""

		if err := audit.WriteLog(audit.LogOptions{
			BranchID:    &branch.ID,
			UserID:      sess.UserID,
			UserName:    sess.Email,
			EntityType:  "branch",
			EntityID:    branch.ID,
			Action:      models.AuditActionApprove,
			Description: fmt.Sprintf("Application for branch '%s' approved", branch.Name),
			Before:      before,
			After:       fiber.Map{"status": branch.Status},
		}); err != nil {
			logger.L.Errorw("audit write failed", "error", err)
		}

		logger.L.Infow("application approved", "branch_id", branch.ID, "by_user", sess.UserID)

		return c.JSON(fiber.Map{"id": branch.ID, "status": branch.Status})
	}
}

type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

// RejectApplicationHandler moves a PENDING application to REJECTED. A reason
// is mandatory and is stored on the application.
func RejectApplicationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validation("Invalid application id")
		}

		var body RejectApplicationRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}
		body.Reason = strings.TrimSpace(body.Reason)
		if body.Reason == "" {
			return apperr.Validation("A rejection reason is required")
		}

		franchiseID, err := auth.SessionFranchiseID(sess)
		if err != nil {
			return err
		}

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ? AND franchise_id = ?", id, franchiseID).Error; err != nil {
			return apperr.NotFound("Application")
		}

		switch branch.Status {
		case models.BranchRejected:
			return c.JSON(fiber.Map{"id": branch.ID, "status": branch.Status, "reason": branch.RejectionReason})
		case models.BranchActive:
			return apperr.InvalidState("An active branch cannot be rejected")
		}

		before := fiber.Map{"status": branch.Status}
		decide := database.DB.Model(&models.Branch{}).
			Where("id = ? AND status = ?", branch.ID, models.BranchPending).
			Updates(map[string]any{"status": models.BranchRejected, "rejection_reason": body.Reason})
		if decide.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Application could not be rejected")
		}
		if decide.RowsAffected == 0 {
			var current models.Branch
			if err := database.DB.First(&current, "id = ?", branch.ID).Error; err != nil {
				return apperr.NotFound("Application")
			}
			if current.Status == models.BranchRejected {
				return c.JSON(fiber.Map{"id": current.ID, "status": current.Status, "reason": current.RejectionReason})
			}
			return apperr.Conflict("Application was decided by another user")
		}
		branch.Status = models.BranchRejected
		branch.RejectionReason = body.Reason

		if err := audit.WriteLog(audit.LogOptions{
			BranchID:    &branch.ID,
			UserID:      sess.UserID,
			UserName:    sess.Email,
			EntityType:  "branch",
			EntityID:    branch.ID,
			Action:      models.AuditActionReject,
			Description: fmt.Sprintf("Application for branch '%s' rejected: %s", branch.Name, body.Reason),
			Before:      before,
			After:       fiber.Map{"status": branch.Status, "reason": body.Reason},
		}); err != nil {
			logger.L.Errorw("audit write failed", "error", err)
		}

		logger.L.Infow("application rejected", "branch_id", branch.ID, "by_user", sess.UserID)

		return c.JSON(fiber.Map{"id": branch.ID, "status": branch.Status, "reason": branch.RejectionReason})
	}
}

// ListBrandsHandler is public so the application form can offer the brands
// that are open for franchising.
func ListBrandsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var franchises []models.Franchise
		if err := database.DB.Order("brand_name ASC").Find(&franchises).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Brands could not be listed")
		}

		brands := make([]fiber.Map, 0, len(franchises))
		for _, f := range franchises {
			brands = append(brands, fiber.Map{"id": f.ID, "brand_name": f.BrandName})
		}
		return c.JSON(brands)
	}
}
