package models

import "gorm.io/gorm"

type ChapterComment struct {
	gorm.Model
	CommentID string `gorm:"uniqueIndex"`
	CourseID  uint
	ChapterID string `gorm:"index"`
	UserID    uint
	UserName  string
	UserImage string
	Text      string
}
