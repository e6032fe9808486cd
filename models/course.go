package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	TeacherID      uint
	TeacherName    string
	Title          string `gorm:"not null"`
	Description    string
	Category       string
	Image          string
	Price          int64  // minor currency units; 0 means free
	Level          string // Beginner, Intermediate, Advanced
	Status         string `gorm:"default:Draft"` // Draft, Published
	CompletionRate float64
	Sections       []Section
	Enrollments    []Enrollment
}

type Section struct {
	gorm.Model
	CourseID    uint
	SectionID   string `gorm:"index"`
	Title       string
	Description string
	Position    int
	Chapters    []Chapter `gorm:"foreignKey:SectionRowID"`
}

// Chapter is the smallest content unit of a course. SectionRowID references
// the owning Section row; ChapterID is the client-facing identifier, unique
// within a course.
type Chapter struct {
	gorm.Model
	SectionRowID uint
	ChapterID    string `gorm:"index"`
	Type         string // Text, Quiz, Video
	Title        string
	Content      string
	VideoURL     string
	Position     int
	Questions    []QuizQuestion `gorm:"foreignKey:ChapterRowID"`
}

type QuizQuestion struct {
	gorm.Model
	ChapterRowID uint
	QuestionID   string
	Text         string
	Options      []QuizOption `gorm:"foreignKey:QuestionRowID"`
}

type QuizOption struct {
	gorm.Model
	QuestionRowID uint
	OptionID      string
	Text          string
	IsCorrect     bool
}

// Enrollment marks a user as a member of a course. The pair is unique and the
// row is never mutated, only created on enrollment and removed on unenrollment.
// Deletes are hard: a soft-deleted row would keep occupying the unique pair
// index and block re-enrollment.
type Enrollment struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint `gorm:"index:idx_enrollment_pair,unique"`
	CourseID  uint `gorm:"index:idx_enrollment_pair,unique"`
}
