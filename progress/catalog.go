// Package progress owns per-user course progress and the leaderboards derived
// from it. Progress records are validated and merged against the live course
// catalog, so catalog edits are reflected on the next write.
package progress

import "errors"

var (
	// ErrCourseNotFound means the course has no shape in the catalog.
	ErrCourseNotFound = errors.New("course not found")
	// ErrNotStarted means no progress record exists for the (user, course)
	// pair yet. It is a valid empty state, not a failure.
	ErrNotStarted = errors.New("progress not started")
)

type ChapterType string

const (
	ChapterText  ChapterType = "Text"
	ChapterQuiz  ChapterType = "Quiz"
	ChapterVideo ChapterType = "Video"
)

// CourseShape is the structural description of a course at a point in time.
type CourseShape struct {
	CourseID uint
	Sections []SectionShape
}

type SectionShape struct {
	SectionID string
	Chapters  []ChapterShape
}

type ChapterShape struct {
	ChapterID string
	Type      ChapterType
}

// ChapterCount returns the total number of chapters across all sections.
func (s *CourseShape) ChapterCount() int {
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Chapters)
	}
	return n
}

// ChapterIDs returns the set of chapter ids present in the shape.
func (s *CourseShape) ChapterIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, sec := range s.Sections {
		for _, ch := range sec.Chapters {
			ids[ch.ChapterID] = true
		}
	}
	return ids
}

// Catalog looks up the live structure of a course. Implementations must not
// cache: chapter additions and removals have to be visible immediately.
type Catalog interface {
	ShapeOf(courseID uint) (*CourseShape, error)
	ChapterCount(courseID uint) (int, error)
}
