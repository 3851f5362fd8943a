// Package settings persists the shell's user settings as a single JSON
// blob: a keyed map read at startup and written on change. Persistence
// failures are deliberately non-fatal. A load failure starts fresh with
// an empty map, and a save failure skips the save; the desktop shell
// must keep running either way.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store is a keyed settings map backed by one JSON file. Safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// NewStore creates a store persisting to path. Nothing is read until
// Load.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		values: make(map[string]any),
	}
}

// Load reads the JSON blob. Missing or unreadable files leave the store
// empty; the error is returned for logging only.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	values := make(map[string]any)
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()

	return nil
}

// Save writes the JSON blob, creating parent directories as needed. The
// error is returned for logging only; callers keep running on failure.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(s.path, data, 0o644)
}

// Get returns the raw value for key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]

	return v, ok
}

// GetString returns the value for key when it is a string, or fallback.
func (s *Store) GetString(key, fallback string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[key].(string); ok {
		return v
	}

	return fallback
}

// GetBool returns the value for key when it is a bool, or fallback.
func (s *Store) GetBool(key string, fallback bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[key].(bool); ok {
		return v
	}

	return fallback
}

// Set stores a value. The store is not saved automatically.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
}

// Delete removes a key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
}

// Keys returns the stored keys in no particular order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}

	return keys
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}
