package auth

import (
	"fmt"
	"strings"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/config"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const ctxSessionKey = "session"

// Session is the authenticated caller as carried by the JWT. BranchID is nil
// only for franchisors.
type Session struct {
	UserID   uint
	Email    string
	Role     models.UserRole
	BranchID *uint
}

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithIssuer(tokenIssuer))
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok || !claims.Role.Valid() {
			return fiber.NewError(fiber.StatusUnauthorized, "Token could not be parsed")
		}

		c.Locals(ctxSessionKey, Session{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Role:     claims.Role,
			BranchID: claims.BranchID,
		})

		return c.Next()
	}
}

// CurrentSession returns the session stored by JWTMiddleware.
func CurrentSession(c *fiber.Ctx) (Session, error) {
	sess, ok := c.Locals(ctxSessionKey).(Session)
	if !ok {
		return Session{}, apperr.Forbidden("No session attached to request")
	}
	return sess, nil
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := CurrentSession(c)
		if err != nil {
			return err
		}
		for _, r := range allowedRoles {
			if r == sess.Role {
				return c.Next()
			}
		}
		return apperr.Forbidden("You are not allowed to perform this action")
	}
}

// Authorize is the single branch-scope gate: a session may touch a branch iff
// it is a franchisor (network-wide) or scoped to exactly that branch. Every
// branch-scoped operation goes through here; no handler duplicates the check.
func Authorize(sess Session, allowedRoles []models.UserRole, targetBranchID uint) error {
	roleAllowed := false
	for _, r := range allowedRoles {
		if r == sess.Role {
			roleAllowed = true
			break
		}
	}
	if !roleAllowed {
		return apperr.Forbidden("You are not allowed to perform this action")
	}

	switch sess.Role {
	case models.RoleFranchisor:
		return nil
	case models.RoleBranchOwner, models.RoleManager, models.RoleStaff:
		if sess.BranchID != nil && *sess.BranchID == targetBranchID {
			return nil
		}
		return apperr.Forbidden("You are not authorized for this branch")
	}
	return apperr.Forbidden("Unknown role")
}

// ResolveBranchID resolves the branch a request targets: branch-scoped users
// always act on their own branch (an explicit mismatch is refused),
// franchisors must name one explicitly.
func ResolveBranchID(sess Session, explicit *uint) (uint, error) {
	if sess.Role.BranchScoped() {
		if sess.BranchID == nil {
			return 0, apperr.Forbidden("No branch scope attached to session")
		}
		if explicit != nil && *explicit != *sess.BranchID {
			return 0, apperr.Forbidden("You are not authorized for this branch")
		}
		return *sess.BranchID, nil
	}

	if explicit == nil {
		return 0, apperr.Validation("branch_id is required")
	}
	return *explicit, nil
}

// QueryBranchID parses the optional ?branch_id= query parameter.
func QueryBranchID(c *fiber.Ctx) *uint {
	raw := c.QueryInt("branch_id", 0)
	if raw <= 0 {
		return nil
	}
	id := uint(raw)
	return &id
}
