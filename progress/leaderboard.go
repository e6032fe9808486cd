package progress

import (
	"errors"
	"sort"
	"time"
)

// Entry is one row of a leaderboard. Rank is 1-based and computed on read;
// nothing here is persisted, so rankings always reflect the current store.
type Entry struct {
	UserID uint    `json:"userId"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// Leaderboard derives rankings from the progress store by pure recomputation.
type Leaderboard struct {
	store Store
}

func NewLeaderboard(store Store) *Leaderboard {
	return &Leaderboard{store: store}
}

type scoredEntry struct {
	userID    uint
	score     float64
	updatedAt time.Time
}

// CourseLeaderboard ranks every user enrolled in the course by overall
// completion percentage. Ties go to the earlier LastUpdated, rewarding early
// completion, then to the lower user id.
func (l *Leaderboard) CourseLeaderboard(courseID uint) ([]Entry, error) {
	userIDs, err := l.store.ListEnrolledUserIDs(courseID)
	if err != nil {
		return nil, err
	}

	entries := make([]scoredEntry, 0, len(userIDs))
	for _, userID := range userIDs {
		e := scoredEntry{userID: userID}
		rec, err := l.store.Get(userID, courseID)
		if err != nil && !errors.Is(err, ErrNotStarted) {
			return nil, err
		}
		if rec != nil {
			e.score = float64(rec.OverallProgress)
			e.updatedAt = rec.LastUpdated
		}
		entries = append(entries, e)
	}

	return rank(entries), nil
}

// LearningLeaderboard ranks all enrolled users across the whole platform by
// average completion percentage over their enrolled courses, so breadth of
// enrollment does not inflate the score. The tie-break timestamp is the most
// recent LastUpdated among the user's records.
func (l *Leaderboard) LearningLeaderboard() ([]Entry, error) {
	enrollments, err := l.store.ListEnrollments()
	if err != nil {
		return nil, err
	}

	entries := make([]scoredEntry, 0, len(enrollments))
	for userID, courseIDs := range enrollments {
		e := scoredEntry{userID: userID}
		if len(courseIDs) > 0 {
			records, err := l.store.GetBatch(userID, courseIDs)
			if err != nil {
				return nil, err
			}
			sum := 0.0
			for _, rec := range records {
				sum += float64(rec.OverallProgress)
				if rec.LastUpdated.After(e.updatedAt) {
					e.updatedAt = rec.LastUpdated
				}
			}
			e.score = sum / float64(len(courseIDs))
		}
		entries = append(entries, e)
	}

	return rank(entries), nil
}

func rank(entries []scoredEntry) []Entry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		if !entries[i].updatedAt.Equal(entries[j].updatedAt) {
			return entries[i].updatedAt.Before(entries[j].updatedAt)
		}
		return entries[i].userID < entries[j].userID
	})

	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{UserID: e.userID, Score: e.score, Rank: i + 1}
	}
	return out
}
