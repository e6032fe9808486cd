package models

import "gorm.io/gorm"

// Bootcamp groups a set of courses into one program.
type Bootcamp struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Description string
	Image       string
	StartDate   string
	EndDate     string
	Courses     []Course `gorm:"many2many:bootcamp_courses"`
}
