package progress

import (
	"errors"
	"sync"
	"time"
)

// fakeCatalog serves shapes from memory; tests mutate it to simulate
// catalog edits between writes.
type fakeCatalog struct {
	mu     sync.Mutex
	shapes map[uint]*CourseShape
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{shapes: make(map[uint]*CourseShape)}
}

func (f *fakeCatalog) setShape(shape *CourseShape) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shapes[shape.CourseID] = shape
}

func (f *fakeCatalog) ShapeOf(courseID uint) (*CourseShape, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	shape, ok := f.shapes[courseID]
	if !ok {
		return nil, ErrCourseNotFound
	}
	return shape, nil
}

func (f *fakeCatalog) ChapterCount(courseID uint) (int, error) {
	shape, err := f.ShapeOf(courseID)
	if err != nil {
		return 0, err
	}
	return shape.ChapterCount(), nil
}

type memKey struct {
	userID   uint
	courseID uint
}

// memStore is an in-memory Store with the same contract as GormStore.
type memStore struct {
	mu          sync.Mutex
	records     map[memKey]*Record
	enrollments map[uint][]uint
	failUpsert  error
}

func newMemStore() *memStore {
	return &memStore{
		records:     make(map[memKey]*Record),
		enrollments: make(map[uint][]uint),
	}
}

func (s *memStore) addEnrollment(userID, courseID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments[userID] = append(s.enrollments[userID], courseID)
}

func cloneRecord(rec *Record) *Record {
	out := *rec
	out.Sections = make([]SectionProgress, len(rec.Sections))
	for i, sec := range rec.Sections {
		cp := sec
		cp.Chapters = append([]ChapterProgress(nil), sec.Chapters...)
		out.Sections[i] = cp
	}
	return &out
}

func (s *memStore) Get(userID, courseID uint) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[memKey{userID, courseID}]
	if !ok {
		return nil, ErrNotStarted
	}
	return cloneRecord(rec), nil
}

func (s *memStore) GetBatch(userID uint, courseIDs []uint) (map[uint]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint]*Record)
	for _, courseID := range courseIDs {
		if rec, ok := s.records[memKey{userID, courseID}]; ok {
			out[courseID] = cloneRecord(rec)
		}
	}
	return out, nil
}

func (s *memStore) ListEnrolledCourseIDs(userID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint(nil), s.enrollments[userID]...), nil
}

func (s *memStore) ListEnrolledUserIDs(courseID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for userID, courses := range s.enrollments {
		for _, c := range courses {
			if c == courseID {
				ids = append(ids, userID)
				break
			}
		}
	}
	return ids, nil
}

func (s *memStore) ListEnrollments() (map[uint][]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint][]uint, len(s.enrollments))
	for userID, courses := range s.enrollments {
		out[userID] = append([]uint(nil), courses...)
	}
	return out, nil
}

func (s *memStore) Upsert(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpsert != nil {
		return s.failUpsert
	}
	rec.LastUpdated = time.Now().UTC()
	s.records[memKey{rec.UserID, rec.CourseID}] = cloneRecord(rec)
	return nil
}

// setRecord installs a record with an explicit timestamp, bypassing Upsert's
// clock, for leaderboard ordering tests.
func (s *memStore) setRecord(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[memKey{rec.UserID, rec.CourseID}] = cloneRecord(rec)
}

var errStoreDown = errors.New("store unavailable")
