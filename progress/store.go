package progress

import "time"

// ChapterProgress is the completion state of one chapter.
type ChapterProgress struct {
	ChapterID    string     `json:"chapterId"`
	Completed    bool       `json:"completed"`
	LastAccessed *time.Time `json:"lastAccessed,omitempty"`
}

// SectionProgress mirrors a course section's chapters.
type SectionProgress struct {
	SectionID string            `json:"sectionId"`
	Chapters  []ChapterProgress `json:"chapters"`
}

// Record is the full progress state of one user in one course.
// OverallProgress is derived from the chapter list and the course shape's
// total chapter count, recomputed on every merge.
type Record struct {
	UserID          uint              `json:"userId"`
	CourseID        uint              `json:"courseId"`
	Sections        []SectionProgress `json:"sections"`
	OverallProgress int               `json:"overallProgress"`
	LastUpdated     time.Time         `json:"lastUpdated"`
}

// ChapterIndex flattens the record's chapters into a lookup by chapter id.
func (r *Record) ChapterIndex() map[string]ChapterProgress {
	idx := make(map[string]ChapterProgress)
	for _, sec := range r.Sections {
		for _, ch := range sec.Chapters {
			idx[ch.ChapterID] = ch
		}
	}
	return idx
}

// Store owns the progress records and the enrollment membership view.
// Get returns ErrNotStarted for a pair with no prior write; GetBatch simply
// omits such pairs. Upsert is a total replace-or-create and stamps
// LastUpdated as a side effect.
type Store interface {
	Get(userID, courseID uint) (*Record, error)
	GetBatch(userID uint, courseIDs []uint) (map[uint]*Record, error)
	ListEnrolledCourseIDs(userID uint) ([]uint, error)
	ListEnrolledUserIDs(courseID uint) ([]uint, error)
	ListEnrollments() (map[uint][]uint, error)
	Upsert(rec *Record) error
}
