package audit

import (
	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint   `json:"id"`
	BranchID    *uint  `json:"branch_id"`
	UserID      uint   `json:"user_id"`
	UserName    string `json:"user_name"`
	EntityType  string `json:"entity_type"`
	EntityID    uint   `json:"entity_id"`
	Action      string `json:"action"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// GET /api/audit-logs
// Franchisors see everything; branch users only their branch's trail.
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		query := database.DB.Model(&models.AuditLog{}).Order("created_at DESC").Limit(200)
		if sess.Role != models.RoleFranchisor {
			branchID, err := auth.ResolveBranchID(sess, nil)
			if err != nil {
				return err
			}
			query = query.Where("branch_id = ?", branchID)
		} else if explicit := auth.QueryBranchID(c); explicit != nil {
			if err := auth.AuthorizeBranchScope(sess, *explicit); err != nil {
				return err
			}
			query = query.Where("branch_id = ?", *explicit)
		}

		var logs []models.AuditLog
		if err := query.Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Audit logs could not be listed")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				BranchID:    l.BranchID,
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      string(l.Action),
				Description: l.Description,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(resp)
	}
}
