package progress

import (
	"errors"

	"learnhub/models"

	"gorm.io/gorm"
)

// GormCatalog reads the live course structure. No caching: the aggregator
// relies on catalog edits being visible on the next progress write.
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (c *GormCatalog) ShapeOf(courseID uint) (*CourseShape, error) {
	var course models.Course
	err := c.db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Sections.Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	shape := &CourseShape{
		CourseID: course.ID,
		Sections: make([]SectionShape, 0, len(course.Sections)),
	}
	for _, sec := range course.Sections {
		ss := SectionShape{
			SectionID: sec.SectionID,
			Chapters:  make([]ChapterShape, 0, len(sec.Chapters)),
		}
		for _, ch := range sec.Chapters {
			ss.Chapters = append(ss.Chapters, ChapterShape{
				ChapterID: ch.ChapterID,
				Type:      ChapterType(ch.Type),
			})
		}
		shape.Sections = append(shape.Sections, ss)
	}
	return shape, nil
}

func (c *GormCatalog) ChapterCount(courseID uint) (int, error) {
	shape, err := c.ShapeOf(courseID)
	if err != nil {
		return 0, err
	}
	return shape.ChapterCount(), nil
}
