package stockrequest

import (
	"strings"
	"time"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/audit"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/franchise"
	"franchise-backend/internal/inventory"
	"franchise-backend/internal/logger"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RequestItemInput struct {
	StockItemID       uint     `json:"stock_item_id"`
	Quantity          float64  `json:"quantity"`
	EstimatedUnitCost *float64 `json:"estimated_unit_cost"`
}

type CreateRequestBody struct {
	BranchID *uint              `json:"branch_id"`
	Note     string             `json:"note"`
	Items    []RequestItemInput `json:"items"`
}

// CreateRequestHandler raises a replenishment request for the caller's
// ACTIVE branch. Items are validated against the franchise catalog; the
// request itself touches no inventory.
func CreateRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		var body CreateRequestBody
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}
		if len(body.Items) == 0 {
			return apperr.Validation("At least one item is required")
		}

		branchID, err := auth.ResolveBranchID(sess, body.BranchID)
		if err != nil {
			return err
		}
		if err := auth.Authorize(sess, []models.UserRole{models.RoleBranchOwner, models.RoleManager}, branchID); err != nil {
			return err
		}
		branch, err := franchise.RequireActiveBranch(branchID)
		if err != nil {
			return err
		}

		seen := make(map[uint]bool, len(body.Items))
		items := make([]models.StockRequestItem, 0, len(body.Items))
		for _, in := range body.Items {
			if in.StockItemID == 0 {
				return apperr.Validation("stock_item_id is required on every item")
			}
			if in.Quantity <= 0 {
				return apperr.Validation("Item quantities must be positive")
			}
			if in.EstimatedUnitCost != nil && *in.EstimatedUnitCost < 0 {
				return apperr.Validation("estimated_unit_cost cannot be negative")
			}
			if seen[in.StockItemID] {
				return apperr.Validation("Duplicate stock item in request")
			}
			seen[in.StockItemID] = true

			var item models.StockItem
			if err := database.DB.First(&item, "id = ? AND franchise_id = ?", in.StockItemID, branch.FranchiseID).Error; err != nil {
				return apperr.NotFound("Stock item")
			}

			items = append(items, models.StockRequestItem{
				StockItemID:       in.StockItemID,
				RequestedQuantity: in.Quantity,
				EstimatedUnitCost: in.EstimatedUnitCost,
			})
		}

		request := models.StockRequest{
			BranchID:          branchID,
			RequestedByUserID: sess.UserID,
			Status:            models.RequestPending,
			Note:              strings.TrimSpace(body.Note),
			Items:             items,
		}
		if err := database.DB.Create(&request).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Request could not be created")
		}

		logger.L.Infow("stock request created",
			"request_id", request.ID, "branch_id", branchID, "items", len(items))

		return c.Status(fiber.StatusCreated).JSON(request)
	}
}

// ListRequestsHandler shows a branch its own requests; franchisors see the
// whole network or one branch via ?branch_id=. ?status= filters.
func ListRequestsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		query := database.DB.Preload("Items.StockItem").Preload("Branch")
		if sess.Role == models.RoleFranchisor {
			if explicit := auth.QueryBranchID(c); explicit != nil {
				if err := auth.AuthorizeBranchScope(sess, *explicit); err != nil {
					return err
				}
				query = query.Where("branch_id = ?", *explicit)
			} else {
				franchiseID, err := auth.SessionFranchiseID(sess)
				if err != nil {
					return err
				}
				query = query.Joins("JOIN branches ON branches.id = stock_requests.branch_id").
					Where("branches.franchise_id = ?", franchiseID)
			}
		} else {
			branchID, err := auth.ResolveBranchID(sess, nil)
			if err != nil {
				return err
			}
			query = query.Where("stock_requests.branch_id = ?", branchID)
		}

		if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
			query = query.Where("stock_requests.status = ?", status)
		}

		var requests []models.StockRequest
		if err := query.Order("stock_requests.created_at DESC").Find(&requests).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Requests could not be listed")
		}

		return c.JSON(requests)
	}
}

// ApproveRequestHandler moves a PENDING request to APPROVED and posts one
// delivery per line item inside the same transaction, so the decision and
// the resulting stock are never out of step. Approving an APPROVED request
// again is a no-op; a REJECTED one is refused.
func ApproveRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validation("Invalid request id")
		}

		var request models.StockRequest
		if err := database.DB.Preload("Items").First(&request, "id = ?", id).Error; err != nil {
			return apperr.NotFound("Stock request")
		}

		if err := auth.Authorize(sess, []models.UserRole{models.RoleFranchisor, models.RoleBranchOwner}, request.BranchID); err != nil {
			return err
		}
		if err := auth.AuthorizeBranchScope(sess, request.BranchID); err != nil {
			return err
		}
		if _, err := franchise.RequireActiveBranch(request.BranchID); err != nil {
			return err
		}

		switch request.Status {
		case models.RequestApproved:
			return c.JSON(fiber.Map{"id": request.ID, "status": request.Status})
		case models.RequestRejected:
			return apperr.InvalidState("A rejected request cannot be approved")
		}

		userID := sess.UserID
		now := time.Now()

		deliveries := make([]inventory.Delivery, 0, len(request.Items))
		for _, item := range request.Items {
			deliveries = append(deliveries, inventory.Delivery{
				StockItemID: item.StockItemID,
				Quantity:    item.RequestedQuantity,
				UnitCost:    item.EstimatedUnitCost,
				Note:        "stock request approval",
			})
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not start transaction")
		}
		// Flip the status first, guarded on PENDING. A concurrent decision
		// makes this touch zero rows, and deliveries are only posted once
		// the guard has claimed the request.
		decide := tx.Model(&models.StockRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Updates(map[string]any{
				"status":             models.RequestApproved,
				"decided_by_user_id": userID,
				"decided_at":         now,
			})
		if decide.Error != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Request could not be approved")
		}
		if decide.RowsAffected == 0 {
			tx.Rollback()
			var current models.StockRequest
			if err := database.DB.First(&current, "id = ?", request.ID).Error; err != nil {
				return apperr.NotFound("Stock request")
			}
			if current.Status == models.RequestApproved {
				return c.JSON(fiber.Map{"id": current.ID, "status": current.Status})
			}
			return apperr.Conflict("Request was decided by another user")
		}
		if err := inventory.PostDeliveries(tx, request.BranchID, &userID, deliveries); err != nil {
			tx.Rollback()
			if _, ok := apperr.AsError(err); ok {
				return err
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Deliveries could not be posted")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transaction could not be committed")
		}

		if err := audit.WriteLog(audit.LogOptions{
			BranchID:    &request.BranchID,
			UserID:      sess.UserID,
			UserName:    sess.Email,
			EntityType:  "stock_request",
			EntityID:    request.ID,
			Action:      models.AuditActionApprove,
			Description: "Stock request approved, deliveries posted",
			Before:      fiber.Map{"status": models.RequestPending},
			After:       fiber.Map{"status": models.RequestApproved, "items": len(request.Items)},
		}); err != nil {
			logger.L.Errorw("audit write failed", "error", err)
		}

		logger.L.Infow("stock request approved",
			"request_id", request.ID, "branch_id", request.BranchID, "by_user", sess.UserID)

		return c.JSON(fiber.Map{"id": request.ID, "status": models.RequestApproved})
	}
}

type RejectRequestBody struct {
	Reason string `json:"reason"`
}

// RejectRequestHandler moves a PENDING request to REJECTED; inventory is
// left untouched. A reason is mandatory.
func RejectRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validation("Invalid request id")
		}

		var body RejectRequestBody
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}
		body.Reason = strings.TrimSpace(body.Reason)
		if body.Reason == "" {
			return apperr.Validation("A rejection reason is required")
		}

		var request models.StockRequest
		if err := database.DB.First(&request, "id = ?", id).Error; err != nil {
			return apperr.NotFound("Stock request")
		}

		if err := auth.Authorize(sess, []models.UserRole{models.RoleFranchisor, models.RoleBranchOwner}, request.BranchID); err != nil {
			return err
		}
		if err := auth.AuthorizeBranchScope(sess, request.BranchID); err != nil {
			return err
		}

		switch request.Status {
		case models.RequestRejected:
			return c.JSON(fiber.Map{"id": request.ID, "status": request.Status, "reason": request.RejectionReason})
		case models.RequestApproved:
			return apperr.InvalidState("An approved request cannot be rejected")
		}

		userID := sess.UserID
		now := time.Now()
		decide := database.DB.Model(&models.StockRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Updates(map[string]any{
				"status":             models.RequestRejected,
				"decided_by_user_id": userID,
				"decided_at":         now,
				"rejection_reason":   body.Reason,
			})
		if decide.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Request could not be rejected")
		}
		if decide.RowsAffected == 0 {
			var current models.StockRequest
			if err := database.DB.First(&current, "id = ?", request.ID).Error; err != nil {
				return apperr.NotFound("Stock request")
			}
			if current.Status == models.RequestRejected {
				return c.JSON(fiber.Map{"id": current.ID, "status": current.Status, "reason": current.RejectionReason})
			}
			return apperr.Conflict("Request was decided by another user")
		}

		if err := audit.WriteLog(audit.LogOptions{
			BranchID:    &request.BranchID,
			UserID:      sess.UserID,
			UserName:    sess.Email,
			EntityType:  "stock_request",
			EntityID:    request.ID,
			Action:      models.AuditActionReject,
			Description: "Stock request rejected: " + body.Reason,
			Before:      fiber.Map{"status": models.RequestPending},
			After:       fiber.Map{"status": models.RequestRejected, "reason": body.Reason},
		}); err != nil {
			logger.L.Errorw("audit write failed", "error", err)
		}

		return c.JSON(fiber.Map{"id": request.ID, "status": models.RequestRejected, "reason": body.Reason})
	}
}
