package models

import "time"

type BranchStatus string

const (
	BranchPending  BranchStatus = "PENDING"
	BranchActive   BranchStatus = "ACTIVE"
	BranchRejected BranchStatus = "REJECTED"
)

// Terminal reports whether no further status transition is allowed.
// REJECTED branches are immutable; ACTIVE branches stay active.
func (s BranchStatus) Terminal() bool {
	return s == BranchActive || s == BranchRejected
}

// Branch doubles as the franchise application: it is created PENDING when a
// prospective owner applies and only becomes operational once a franchisor
// approves it. Only ACTIVE branches may hold staff, inventory and sales.
type Branch struct {
	ID          uint `gorm:"primaryKey"`
	FranchiseID uint `gorm:"index;not null"`
	Franchise   Franchise
	Name        string       `gorm:"size:255;not null"`
	Location    string       `gorm:"size:255;not null"`
	OwnerName   string       `gorm:"size:255;not null"`
	Status      BranchStatus `gorm:"size:20;not null;default:PENDING"`

	// Application details, kept for the franchisor's review trail.
	PropertySize        string  `gorm:"size:100"`
	InvestmentCapacity  float64 `gorm:"not null;default:0"`
	BusinessExperience  string  `gorm:"type:text"`
	ReasonForFranchise  string  `gorm:"type:text"`
	ExpectedOpeningDate *time.Time
	DocumentRef         string `gorm:"size:255"` // stored upload reference, never the bytes
	RejectionReason     string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User
}
