package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// StockRequest is a replenishment ask raised by a branch, decided by the
// owning branch owner (or a franchisor). Approval posts one delivery per
// line item; rejection touches no inventory. Terminal states are immutable.
type StockRequest struct {
	ID                uint `gorm:"primaryKey"`
	BranchID          uint `gorm:"index;not null"`
	Branch            Branch
	RequestedByUserID uint          `gorm:"not null"`
	RequestedBy       User          `gorm:"foreignKey:RequestedByUserID"`
	Status            RequestStatus `gorm:"size:20;not null;default:PENDING"`
	Note              string        `gorm:"size:255"`
	DecidedByUserID   *uint
	DecidedAt         *time.Time
	RejectionReason   string `gorm:"size:255"`
	CreatedAt         time.Time

	Items []StockRequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

type StockRequestItem struct {
	ID                uint `gorm:"primaryKey"`
	RequestID         uint `gorm:"index;not null"`
	StockItemID       uint `gorm:"index;not null"`
	StockItem         StockItem
	RequestedQuantity float64 `gorm:"not null"`
	EstimatedUnitCost *float64
}
