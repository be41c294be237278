package models

import "time"

// Franchise is the brand record owned by a franchisor account.
type Franchise struct {
	ID            uint   `gorm:"primaryKey"`
	BrandName     string `gorm:"size:255;not null;unique"`
	ContactPerson string `gorm:"size:255;not null"`
	Email         string `gorm:"size:255;not null"`
	Phone         string `gorm:"size:50"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Branches []Branch
}
