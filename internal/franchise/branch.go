package franchise

import (
	"franchise-backend/internal/apperr"
	"franchise-backend/internal/database"
	"franchise-backend/internal/models"
)

// RequireActiveBranch loads a branch and refuses anything not yet approved.
// Every sales/inventory/request mutation runs behind this gate.
func RequireActiveBranch(branchID uint) (*models.Branch, error) {
	var branch models.Branch
	if err := database.DB.First(&branch, "id = ?", branchID).Error; err != nil {
		return nil, apperr.NotFound("Branch")
	}
	if branch.Status != models.BranchActive {
		return nil, apperr.InvalidState("Branch is not active")
	}
	return &branch, nil
}
