// Package storage persists the aggregated product dataset and holds the
// in-memory snapshot the query API serves from.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"materialworker/internal/scraper"
	apperr "materialworker/pkg/errors"
)

// Store writes the aggregated dataset to a JSON file and reads it back.
// The file is one ordered array; each save replaces the previous content.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store writing to the given file path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the output file path
func (s *Store) Path() string {
	return s.path
}

// Save writes the records to the output file, creating parent directories
// as needed. Record order is kept; accented product names are written
// as-is, not escaped.
func (s *Store) Save(records []scraper.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if records == nil {
		records = []scraper.ProductRecord{}
	}

	if err := ensureDir(s.path); err != nil {
		return apperr.NewStorage("failed to create output directory", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return apperr.NewStorage("failed to create output file", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(records); err != nil {
		return apperr.NewStorage("failed to encode records", err)
	}

	return nil
}

// Load reads the records back from the output file. A missing file is not
// an error; it simply means nothing has been saved yet.
func (s *Store) Load() ([]scraper.ProductRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.NewStorage("failed to read output file", err)
	}

	var records []scraper.ProductRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperr.NewStorage("failed to decode records", err)
	}

	return records, nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
