package models

import "time"

type Expense struct {
	ID              uint `gorm:"primaryKey"`
	BranchID        uint `gorm:"index;not null"`
	Branch          Branch
	Date            time.Time `gorm:"index;not null"`
	Category        string    `gorm:"size:100"`
	Description     string    `gorm:"size:255"`
	Amount          float64   `gorm:"not null"`
	CreatedByUserID *uint
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
