package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"learnhub/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists progress records and reads enrollment edges through GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(userID, courseID uint) (*Record, error) {
	var row models.CourseProgress
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotStarted
	}
	if err != nil {
		return nil, err
	}
	return recordFromRow(&row)
}

func (s *GormStore) GetBatch(userID uint, courseIDs []uint) (map[uint]*Record, error) {
	var rows []models.CourseProgress
	err := s.db.Where("user_id = ? AND course_id IN ?", userID, courseIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint]*Record, len(rows))
	for i := range rows {
		rec, err := recordFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out[rec.CourseID] = rec
	}
	return out, nil
}

func (s *GormStore) ListEnrolledCourseIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &ids).Error
	return ids, err
}

func (s *GormStore) ListEnrolledUserIDs(courseID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (s *GormStore) ListEnrollments() (map[uint][]uint, error) {
	var edges []models.Enrollment
	if err := s.db.Find(&edges).Error; err != nil {
		return nil, err
	}

	out := make(map[uint][]uint)
	for _, e := range edges {
		out[e.UserID] = append(out[e.UserID], e.CourseID)
	}
	return out, nil
}

// Upsert replaces or creates the record for (UserID, CourseID) and stamps
// LastUpdated. The unique index on the pair makes the conflict target safe.
func (s *GormStore) Upsert(rec *Record) error {
	sections, err := json.Marshal(rec.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}

	rec.LastUpdated = time.Now().UTC()
	row := models.CourseProgress{
		UserID:          rec.UserID,
		CourseID:        rec.CourseID,
		OverallProgress: rec.OverallProgress,
		LastUpdated:     rec.LastUpdated,
		Sections:        datatypes.JSON(sections),
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"overall_progress", "last_updated", "sections", "updated_at",
		}),
	}).Create(&row).Error
}

func recordFromRow(row *models.CourseProgress) (*Record, error) {
	rec := &Record{
		UserID:          row.UserID,
		CourseID:        row.CourseID,
		OverallProgress: row.OverallProgress,
		LastUpdated:     row.LastUpdated,
	}
	if len(row.Sections) > 0 {
		if err := json.Unmarshal([]byte(row.Sections), &rec.Sections); err != nil {
			return nil, fmt.Errorf("decode sections: %w", err)
		}
	}
	return rec, nil
}
