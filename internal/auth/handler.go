package auth

import (
	"regexp"
	"strings"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/config"
	"franchise-backend/internal/database"
	"franchise-backend/internal/logger"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Compared against when the email is unknown so that login cost does not
	// reveal whether the account exists.
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterFranchisorRequest struct {
	BrandName     string `json:"brand_name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Password      string `json:"password"`
}

type RegisterStaffRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"` // MANAGER or STAFF, defaults to STAFF
}

func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" {
			return apperr.Validation("Email and password are required")
		}

		var user models.User
		err := database.DB.Where("email = ?", body.Email).First(&user).Error
		if err != nil {
			// Burn a bcrypt comparison anyway; unknown email and wrong
			// password must be indistinguishable.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(body.Password))
			return apperr.InvalidCredentials()
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return apperr.InvalidCredentials()
		}

		if !user.IsActive {
			return apperr.Forbidden("Account is inactive. Contact administrator")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token could not be generated")
		}

		logger.L.Infow("user logged in", "user_id", user.ID, "role", user.Role)

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":                  user.ID,
				"name":                user.Name,
				"email":               user.Email,
				"role":                user.Role,
				"branch_id":           user.BranchID,
				"must_reset_password": user.MustResetPassword,
			},
		})
	}
}

// RegisterFranchisorHandler creates the brand record and its franchisor
// account together; neither exists without the other.
func RegisterFranchisorHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterFranchisorRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}

		body.BrandName = strings.TrimSpace(body.BrandName)
		body.ContactPerson = strings.TrimSpace(body.ContactPerson)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.BrandName == "" || body.ContactPerson == "" || body.Email == "" || body.Password == "" {
			return apperr.Validation("brand_name, contact_person, email and password are required")
		}
		if !emailPattern.MatchString(body.Email) {
			return apperr.Validation("Invalid email format")
		}
		if err := ValidatePassword(body.Password); err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return apperr.Conflict("Email is already registered")
		}
		database.DB.Model(&models.Franchise{}).Where("brand_name = ?", body.BrandName).Count(&count)
		if count > 0 {
			return apperr.Conflict("Brand name is already registered")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Password could not be hashed")
		}

		franchise := models.Franchise{
			BrandName:     body.BrandName,
			ContactPerson: body.ContactPerson,
			Email:         body.Email,
			Phone:         SanitizePhone(body.Phone),
		}
		user := models.User{
			Name:         body.ContactPerson,
			Email:        body.Email,
			Phone:        SanitizePhone(body.Phone),
			PasswordHash: string(hash),
			Role:         models.RoleFranchisor,
			IsActive:     true,
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not start transaction")
		}
		if err := tx.Create(&franchise).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Franchise could not be created")
		}
		user.FranchiseID = &franchise.ID
		if err := tx.Create(&user).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "User could not be created")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transaction could not be committed")
		}

		logger.L.Infow("franchisor registered", "franchise_id", franchise.ID, "user_id", user.ID)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"franchise_id": franchise.ID,
			"user_id":      user.ID,
			"brand_name":   franchise.BrandName,
		})
	}
}

// RegisterStaffHandler lets a branch owner add a manager or staff member, and
// a manager add staff, always scoped to their own ACTIVE branch.
func RegisterStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := CurrentSession(c)
		if err != nil {
			return err
		}

		var body RegisterStaffRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return apperr.Validation("name, email and password are required")
		}
		if err := ValidatePassword(body.Password); err != nil {
			return err
		}

		role := body.Role
		if role == "" {
			role = models.RoleStaff
		}
		switch role {
		case models.RoleStaff:
			if sess.Role != models.RoleBranchOwner && sess.Role != models.RoleManager {
				return apperr.Forbidden("Only branch owners or managers can add staff")
			}
		case models.RoleManager:
			if sess.Role != models.RoleBranchOwner {
				return apperr.Forbidden("Only the branch owner can assign a manager")
			}
		default:
			return apperr.Validation("role must be MANAGER or STAFF")
		}

		branchID, err := ResolveBranchID(sess, nil)
		if err != nil {
			return err
		}

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", branchID).Error; err != nil {
			return apperr.NotFound("Branch")
		}
		if branch.Status != models.BranchActive {
			return apperr.InvalidState("Branch is not active")
		}

		if role == models.RoleManager {
			var managers int64
			database.DB.Model(&models.User{}).
				Where("branch_id = ? AND role = ? AND is_active = true", branchID, models.RoleManager).
				Count(&managers)
			if managers > 0 {
				return apperr.Conflict("Branch already has an active manager")
			}
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return apperr.Conflict("Email is already registered")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Password could not be hashed")
		}

		user := models.User{
			BranchID:          &branch.ID,
			Name:              body.Name,
			Email:             body.Email,
			Phone:             SanitizePhone(body.Phone),
			PasswordHash:      string(hash),
			Role:              role,
			IsActive:          true,
			MustResetPassword: true,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "User could not be created")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"role":      user.Role,
			"branch_id": user.BranchID,
		})
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := CurrentSession(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", sess.UserID).Error; err != nil {
			return apperr.NotFound("User")
		}

		response := fiber.Map{
			"user_id":   user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"role":      user.Role,
			"branch_id": user.BranchID,
		}

		if user.BranchID != nil {
			var branch models.Branch
			if err := database.DB.First(&branch, "id = ?", *user.BranchID).Error; err == nil {
				response["branch"] = fiber.Map{
					"id":       branch.ID,
					"name":     branch.Name,
					"location": branch.Location,
					"status":   branch.Status,
				}
			}
		}

		return c.JSON(response)
	}
}

// ValidateEmail rejects anything that does not look like an address. Kept
// deliberately loose; the mailbox is verified operationally, not here.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperr.Validation("Invalid email format")
	}
	return nil
}

// ValidatePassword enforces the minimum credential policy shared by every
// account-creating endpoint.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return apperr.Validation("Password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return apperr.Validation("Password must contain uppercase, lowercase and a number")
	}
	return nil
}

// SanitizePhone strips everything but digits before storage.
func SanitizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
