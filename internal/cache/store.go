// Package cache provides the content-addressed course store. Generated
// courses are keyed by document fingerprint so identical documents never
// trigger a second round of model calls.
package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/courseforge/course-engine/internal/domain"
)

// ErrCacheMiss indicates the fingerprint has no cached course.
var ErrCacheMiss = errors.New("cache miss")

// CourseRecord is what the pipeline hands to the store on write-through.
type CourseRecord struct {
	ID           string
	UserID       string
	Filename     string
	DocumentHash string
	Course       *domain.Course
}

// CourseStore is the persistence contract the pipeline depends on. Both
// operations are best-effort from the pipeline's perspective: a miss or a
// write failure degrades to recompute, never to a hard failure.
type CourseStore interface {
	Get(ctx context.Context, hash string) (*domain.Course, error)
	Put(ctx context.Context, rec CourseRecord) error
	Close() error
}

// MemoryStore implements CourseStore in memory, for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	courses map[string]*domain.Course
}

// NewMemoryStore creates a new in-memory course store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses: make(map[string]*domain.Course),
	}
}

// Get retrieves a course by document hash.
func (s *MemoryStore) Get(ctx context.Context, hash string) (*domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[hash]
	if !ok {
		return nil, ErrCacheMiss
	}
	return course, nil
}

// Put stores a course keyed by its document hash. Last write wins.
func (s *MemoryStore) Put(ctx context.Context, rec CourseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.courses[rec.DocumentHash] = rec.Course
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
