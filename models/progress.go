package models

import (
	"time"

	"gorm.io/datatypes"
)

// CourseProgress is the stored per-(user, course) progress record. Sections
// holds the serialized chapter completion state; OverallProgress is derived
// from it on every write and never allowed to drift.
// Deletes are hard, like Enrollment: the unique pair index is the upsert
// conflict target and must never hold tombstoned rows.
type CourseProgress struct {
	ID              uint `gorm:"primarykey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          uint `gorm:"index:idx_progress_pair,unique"`
	CourseID        uint `gorm:"index:idx_progress_pair,unique"`
	OverallProgress int
	LastUpdated     time.Time
	Sections        datatypes.JSON
}
