package models

import "gorm.io/gorm"

// Transaction tracks a mobile-money push payment for a course enrollment.
type Transaction struct {
	gorm.Model
	TransactionID string `gorm:"uniqueIndex"`
	UserID        uint
	CourseID      uint
	Amount        int64
	PhoneNumber   string
	Provider      string
	ProviderRef   string
	Status        string `gorm:"default:pending"` // pending, completed, failed
}
