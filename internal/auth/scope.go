package auth

import (
	"franchise-backend/internal/apperr"
	"franchise-backend/internal/database"
	"franchise-backend/internal/models"
)

// SessionFranchiseID resolves which franchise the caller belongs to:
// franchisors carry it on their account, branch users inherit it from their
// branch.
func SessionFranchiseID(sess Session) (uint, error) {
	if sess.Role == models.RoleFranchisor {
		var user models.User
		if err := database.DB.First(&user, "id = ?", sess.UserID).Error; err != nil {
			return 0, apperr.NotFound("User")
		}
		if user.FranchiseID == nil {
			return 0, apperr.Forbidden("Franchisor has no franchise configured")
		}
		return *user.FranchiseID, nil
	}

	if sess.BranchID == nil {
		return 0, apperr.Forbidden("No branch scope attached to session")
	}
	var branch models.Branch
	if err := database.DB.First(&branch, "id = ?", *sess.BranchID).Error; err != nil {
		return 0, apperr.NotFound("Branch")
	}
	return branch.FranchiseID, nil
}

// AuthorizeBranchScope is the tenancy half of the branch gate: a franchisor
// may only touch branches of their own franchise, branch users only their
// own branch. Foreign branches read as not found so one brand cannot
// enumerate another's ids.
func AuthorizeBranchScope(sess Session, branchID uint) error {
	if sess.Role != models.RoleFranchisor {
		if sess.BranchID != nil && *sess.BranchID == branchID {
			return nil
		}
		return apperr.Forbidden("You are not authorized for this branch")
	}

	franchiseID, err := SessionFranchiseID(sess)
	if err != nil {
		return err
	}
	var branch models.Branch
	if err := database.DB.First(&branch, "id = ?", branchID).Error; err != nil {
		return apperr.NotFound("Branch")
	}
	if branch.FranchiseID != franchiseID {
		return apperr.NotFound("Branch")
	}
	return nil
}
