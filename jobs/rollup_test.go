package jobs

import (
	"testing"

	"learnhub/database"
	"learnhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRecomputeCompletionRates(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:rollup?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	course := models.Course{Title: "Rollup Course", Status: "Published"}
	require.NoError(t, db.Create(&course).Error)

	// Three enrolled users, one of whom never started: (100 + 50 + 0) / 3.
	for userID := uint(1); userID <= 3; userID++ {
		require.NoError(t, db.Create(&models.Enrollment{UserID: userID, CourseID: course.ID}).Error)
	}
	require.NoError(t, db.Create(&models.CourseProgress{UserID: 1, CourseID: course.ID, OverallProgress: 100}).Error)
	require.NoError(t, db.Create(&models.CourseProgress{UserID: 2, CourseID: course.ID, OverallProgress: 50}).Error)

	require.NoError(t, RecomputeCompletionRates(db))

	var got models.Course
	require.NoError(t, db.First(&got, course.ID).Error)
	assert.InDelta(t, 50.0, got.CompletionRate, 0.001)
}
