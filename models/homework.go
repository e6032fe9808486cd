package models

import "gorm.io/gorm"

type HomeworkSubmission struct {
	gorm.Model
	SubmissionID string `gorm:"uniqueIndex"`
	UserID       uint
	CourseID     uint
	ChapterID    string `gorm:"index"`
	Content      string // text or a link to a file
	Graded       bool   `gorm:"default:false"`
	Grade        *int
}
