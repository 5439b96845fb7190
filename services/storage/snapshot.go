package storage

import (
	"sync"
	"time"

	"materialworker/internal/scraper"
)

// Snapshot holds the dataset from the last completed aggregation run. The
// API always serves from here; an in-flight run never shows partial data.
type Snapshot struct {
	mu        sync.RWMutex
	records   []scraper.ProductRecord
	updatedAt time.Time
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Update replaces the snapshot contents with a completed run's records
func (s *Snapshot) Update(records []scraper.ProductRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.updatedAt = time.Now()
}

// Records returns the current dataset. Callers must not mutate it.
func (s *Snapshot) Records() []scraper.ProductRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// UpdatedAt returns when the snapshot was last replaced; zero when no run
// has completed yet
func (s *Snapshot) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Count returns the number of records in the snapshot
func (s *Snapshot) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
