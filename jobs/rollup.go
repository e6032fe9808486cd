package jobs

import (
	"log"

	"learnhub/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartRollup schedules the nightly completion-rate rollup. The stored rate
// is a presentation aggregate for course cards; leaderboards never read it.
func StartRollup(db *gorm.DB, logger *log.Logger) *cron.Cron {
	c := cron.New()
	if _, err := c.AddFunc("@daily", func() {
		if err := RecomputeCompletionRates(db); err != nil {
			logger.Printf("rollup failed: %v", err)
		}
	}); err != nil {
		logger.Printf("could not schedule rollup: %v", err)
	}
	c.Start()
	return c
}

// RecomputeCompletionRates sets each course's CompletionRate to the average
// overall progress of its enrolled users, counting not-started users as zero.
func RecomputeCompletionRates(db *gorm.DB) error {
	var courses []models.Course
	if err := db.Find(&courses).Error; err != nil {
		return err
	}

	for _, course := range courses {
		var enrolled int64
		if err := db.Model(&models.Enrollment{}).
			Where("course_id = ?", course.ID).
			Count(&enrolled).Error; err != nil {
			return err
		}
		if enrolled == 0 {
			continue
		}

		var sum float64
		if err := db.Model(&models.CourseProgress{}).
			Where("course_id = ?", course.ID).
			Select("COALESCE(SUM(overall_progress), 0)").
			Scan(&sum).Error; err != nil {
			return err
		}

		rate := sum / float64(enrolled)
		if err := db.Model(&models.Course{}).
			Where("id = ?", course.ID).
			Update("completion_rate", rate).Error; err != nil {
			return err
		}
	}
	return nil
}
