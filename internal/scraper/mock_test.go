package scraper

import (
	"context"
	"time"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	cache map[string][]byte
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, &mockError{message: "cache miss"}
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	delete(m.cache, key)
	return nil
}

type mockError struct {
	message string
}

func (e *mockError) Error() string {
	return e.message
}

// stubScraper returns canned records per category and records the order of
// calls it receives
type stubScraper struct {
	supplier string
	name     string
	records  map[string][]ProductRecord
	err      error
	panics   bool
	calls    []string
}

func (s *stubScraper) ScrapeCategory(ctx context.Context, category string) ([]ProductRecord, error) {
	s.calls = append(s.calls, category)
	if s.panics {
		panic("scraper blew up")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records[category], nil
}

func (s *stubScraper) GetSupplier() string {
	return s.supplier
}

func (s *stubScraper) GetName() string {
	return s.name
}
