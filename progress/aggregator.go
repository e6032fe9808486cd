package progress

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
)

type pairKey struct {
	userID   uint
	courseID uint
}

// Aggregator validates and merges progress updates. Updates for the same
// (user, course) pair are serialized by a per-pair mutex so concurrent
// submissions cannot interleave the fetch-merge-persist sequence.
type Aggregator struct {
	catalog Catalog
	store   Store
	logger  *log.Logger

	mu    sync.Mutex
	locks map[pairKey]*sync.Mutex
}

func NewAggregator(catalog Catalog, store Store, logger *log.Logger) *Aggregator {
	return &Aggregator{
		catalog: catalog,
		store:   store,
		logger:  logger,
		locks:   make(map[pairKey]*sync.Mutex),
	}
}

func (a *Aggregator) lockPair(key pairKey) *sync.Mutex {
	a.mu.Lock()
	l, ok := a.locks[key]
	if !ok {
		l = &sync.Mutex{}
		a.locks[key] = l
	}
	a.mu.Unlock()
	l.Lock()
	return l
}

// ApplyUpdate merges incoming chapter completions into the stored record and
// persists the result. The merge is additive: chapters absent from the
// payload keep their prior state. Chapter ids that no longer exist in the
// course shape are dropped silently so stale client payloads survive catalog
// edits. The overall percentage is always recomputed against the current
// shape. Returns ErrCourseNotFound if the course has no shape.
func (a *Aggregator) ApplyUpdate(userID, courseID uint, incoming []SectionProgress) (*Record, error) {
	l := a.lockPair(pairKey{userID, courseID})
	defer l.Unlock()

	shape, err := a.catalog.ShapeOf(courseID)
	if err != nil {
		return nil, err
	}

	existing, err := a.store.Get(userID, courseID)
	if err != nil && !errors.Is(err, ErrNotStarted) {
		return nil, err
	}

	prior := map[string]ChapterProgress{}
	if existing != nil {
		prior = existing.ChapterIndex()
	}

	update := map[string]ChapterProgress{}
	for _, sec := range incoming {
		for _, ch := range sec.Chapters {
			update[ch.ChapterID] = ch
		}
	}

	rec := buildRecord(userID, shape, prior, update)

	known := shape.ChapterIDs()
	for id := range update {
		if !known[id] {
			a.logger.Printf("progress: user %d course %d: ignoring stale chapter %q", userID, courseID, id)
		}
	}

	if err := a.store.Upsert(rec); err != nil {
		return nil, fmt.Errorf("persist progress: %w", err)
	}
	return rec, nil
}

// GetProgress returns the stored record, or an all-incomplete record seeded
// from the course shape when the user has not started yet. The second return
// reports whether a stored record existed.
func (a *Aggregator) GetProgress(userID, courseID uint) (*Record, bool, error) {
	shape, err := a.catalog.ShapeOf(courseID)
	if err != nil {
		return nil, false, err
	}

	rec, err := a.store.Get(userID, courseID)
	if errors.Is(err, ErrNotStarted) {
		return buildRecord(userID, shape, nil, nil), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// buildRecord rebuilds the record's sections from the current shape, taking
// chapter state from the update first, then the prior record, then defaulting
// to incomplete. Chapters removed from the shape disappear; new ones appear
// incomplete. The percentage therefore always matches the live shape.
func buildRecord(userID uint, shape *CourseShape, prior, update map[string]ChapterProgress) *Record {
	rec := &Record{
		UserID:   userID,
		CourseID: shape.CourseID,
		Sections: make([]SectionProgress, 0, len(shape.Sections)),
	}

	total, completed := 0, 0
	for _, sec := range shape.Sections {
		sp := SectionProgress{
			SectionID: sec.SectionID,
			Chapters:  make([]ChapterProgress, 0, len(sec.Chapters)),
		}
		for _, ch := range sec.Chapters {
			cp := ChapterProgress{ChapterID: ch.ChapterID}
			if prev, ok := prior[ch.ChapterID]; ok {
				cp.Completed = prev.Completed
				cp.LastAccessed = prev.LastAccessed
			}
			if in, ok := update[ch.ChapterID]; ok {
				cp.Completed = in.Completed
				if in.LastAccessed != nil {
					cp.LastAccessed = in.LastAccessed
				}
			}
			total++
			if cp.Completed {
				completed++
			}
			sp.Chapters = append(sp.Chapters, cp)
		}
		rec.Sections = append(rec.Sections, sp)
	}

	if total > 0 {
		rec.OverallProgress = int(math.Round(100 * float64(completed) / float64(total)))
	}
	return rec
}
