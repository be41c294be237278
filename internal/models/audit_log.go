package models

import "time"

type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionApprove AuditAction = "approve"
	AuditActionReject  AuditAction = "reject"
)

// AuditLog records who did what to which entity, with JSON snapshots.
// Append-only: workflow decisions and sales are final, so logs are never
// undone or rewritten.
type AuditLog struct {
	ID          uint        `gorm:"primaryKey"`
	BranchID    *uint       `gorm:"index"` // nil for network-wide actions
	UserID      uint        `gorm:"not null"`
	UserName    string      `gorm:"size:255"`
	EntityType  string      `gorm:"size:50;index;not null"`
	EntityID    uint        `gorm:"index;not null"`
	Action      AuditAction `gorm:"size:20;not null"`
	Description string      `gorm:"size:255"`
	BeforeData  string      `gorm:"type:jsonb;default:'null'"`
	AfterData   string      `gorm:"type:jsonb;default:'null'"`
	CreatedAt   time.Time
}
