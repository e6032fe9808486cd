package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(userID, courseID uint, percent int, updated time.Time) *Record {
	return &Record{
		UserID:          userID,
		CourseID:        courseID,
		OverallProgress: percent,
		LastUpdated:     updated,
	}
}

func TestCourseLeaderboardOrdering(t *testing.T) {
	store := newMemStore()
	t1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	store.addEnrollment(1, 10)
	store.addEnrollment(2, 10)
	store.addEnrollment(3, 10)
	store.setRecord(record(1, 10, 60, t1))
	store.setRecord(record(2, 10, 60, t2))
	store.setRecord(record(3, 10, 80, t2))

	entries, err := NewLeaderboard(store).CourseLeaderboard(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Highest score first; equal scores go to the earlier update.
	assert.Equal(t, uint(3), entries[0].UserID)
	assert.Equal(t, uint(1), entries[1].UserID)
	assert.Equal(t, uint(2), entries[2].UserID)
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}

func TestCourseLeaderboardNotStartedScoresZero(t *testing.T) {
	store := newMemStore()
	store.addEnrollment(1, 10)
	store.addEnrollment(2, 10)
	store.setRecord(record(1, 10, 40, time.Now()))

	entries, err := NewLeaderboard(store).CourseLeaderboard(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, uint(1), entries[0].UserID)
	assert.Equal(t, uint(2), entries[1].UserID)
	assert.Equal(t, 0.0, entries[1].Score)
}

func TestCourseLeaderboardUserIDTieBreak(t *testing.T) {
	store := newMemStore()
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store.addEnrollment(7, 10)
	store.addEnrollment(3, 10)
	store.setRecord(record(7, 10, 50, ts))
	store.setRecord(record(3, 10, 50, ts))

	entries, err := NewLeaderboard(store).CourseLeaderboard(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint(3), entries[0].UserID)
	assert.Equal(t, uint(7), entries[1].UserID)
}

func TestLearningLeaderboardAveragesAcrossCourses(t *testing.T) {
	store := newMemStore()
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	// User 1: (100 + 50) / 2 = 75. User 2: 80 / 1 = 80.
	store.addEnrollment(1, 10)
	store.addEnrollment(1, 20)
	store.addEnrollment(2, 10)
	store.setRecord(record(1, 10, 100, ts))
	store.setRecord(record(1, 20, 50, ts))
	store.setRecord(record(2, 10, 80, ts))

	entries, err := NewLeaderboard(store).LearningLeaderboard()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, uint(2), entries[0].UserID)
	assert.Equal(t, 80.0, entries[0].Score)
	assert.Equal(t, uint(1), entries[1].UserID)
	assert.Equal(t, 75.0, entries[1].Score)
}

func TestLearningLeaderboardCountsUnstartedCourses(t *testing.T) {
	store := newMemStore()
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	// User 1 finished one of two enrolled courses: average is 50, not 100.
	store.addEnrollment(1, 10)
	store.addEnrollment(1, 20)
	store.setRecord(record(1, 10, 100, ts))

	entries, err := NewLeaderboard(store).LearningLeaderboard()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 50.0, entries[0].Score)
}

func TestLearningLeaderboardNoRecords(t *testing.T) {
	store := newMemStore()
	store.addEnrollment(1, 10)

	entries, err := NewLeaderboard(store).LearningLeaderboard()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0.0, entries[0].Score)
	assert.Equal(t, 1, entries[0].Rank)
}
