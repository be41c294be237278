package models

import "time"

type UserRole string

const (
	RoleFranchisor  UserRole = "FRANCHISOR"
	RoleBranchOwner UserRole = "BRANCH_OWNER"
	RoleManager     UserRole = "MANAGER"
	RoleStaff       UserRole = "STAFF"
)

// BranchScoped reports whether the role is tied to exactly one branch.
// Only franchisors operate network-wide.
func (r UserRole) BranchScoped() bool {
	switch r {
	case RoleBranchOwner, RoleManager, RoleStaff:
		return true
	case RoleFranchisor:
		return false
	}
	return false
}

// Valid reports whether the role is one of the four known roles.
// Unknown role strings must never pass an authorization check.
func (r UserRole) Valid() bool {
	switch r {
	case RoleFranchisor, RoleBranchOwner, RoleManager, RoleStaff:
		return true
	}
	return false
}

type User struct {
	ID           uint  `gorm:"primaryKey"`
	BranchID     *uint `gorm:"index"` // nil for franchisors
	Branch       *Branch
	FranchiseID  *uint    // set for franchisors (their brand)
	Name         string   `gorm:"size:255;not null"`
	Email        string   `gorm:"size:255;uniqueIndex;not null"`
	Phone        string   `gorm:"size:50"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	IsActive     bool     `gorm:"not null;default:true"`
	// Accounts created on behalf of someone (staff, application owners)
	// must change the password on first login.
	MustResetPassword bool `gorm:"not null;default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
