// Package recent maintains the shell's recent-files list in a local
// sqlite database. Persistence failures degrade the store to in-memory
// only; the recent-files menu is a convenience, never a reason to fail
// startup.
package recent

import (
	"sort"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultMaxItems = 10

// Item is one recent-files entry.
type Item struct {
	ID       uint      `gorm:"primaryKey"`
	Path     string    `gorm:"uniqueIndex"`
	OpenedAt time.Time `gorm:"index"`
}

// Store is a bounded most-recently-used list of file paths.
type Store struct {
	mu       sync.Mutex
	db       *gorm.DB // nil when degraded to memory-only
	items    map[string]time.Time
	maxItems int
}

// Open creates a store backed by the sqlite database at path. Open or
// migration failures return a memory-only store along with the error;
// the store stays usable.
func Open(path string, maxItems int) (*Store, error) {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}

	store := &Store{
		items:    make(map[string]time.Time),
		maxItems: maxItems,
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return store, err
	}
	if err := db.AutoMigrate(&Item{}); err != nil {
		return store, err
	}

	store.db = db

	var persisted []Item
	if err := db.Order("opened_at desc").Limit(maxItems).Find(&persisted).Error; err == nil {
		for _, item := range persisted {
			store.items[item.Path] = item.OpenedAt
		}
	}

	return store, nil
}

// Touch records that path was just opened, inserting or bumping it, and
// trims the list to the configured maximum.
func (s *Store) Touch(path string) {
	now := time.Now()

	s.mu.Lock()
	s.items[path] = now
	evicted := s.trimLocked()
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	item := Item{Path: path, OpenedAt: now}
	s.db.Where(Item{Path: path}).Assign(Item{OpenedAt: now}).FirstOrCreate(&item)
	for _, old := range evicted {
		s.db.Where("path = ?", old).Delete(&Item{})
	}
}

// List returns the recent paths, newest first.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.items))
	for p := range s.items {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		ti, tj := s.items[paths[i]], s.items[paths[j]]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return paths[i] < paths[j]
	})

	return paths
}

// Remove deletes one path from the list.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	delete(s.items, path)
	s.mu.Unlock()

	if s.db != nil {
		s.db.Where("path = ?", path).Delete(&Item{})
	}
}

// Clear empties the list.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = make(map[string]time.Time)
	s.mu.Unlock()

	if s.db != nil {
		s.db.Where("1 = 1").Delete(&Item{})
	}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// Persistent reports whether the sqlite backing is available.
func (s *Store) Persistent() bool {
	return s.db != nil
}

// trimLocked drops the oldest entries beyond maxItems and returns the
// evicted paths. Caller holds the lock.
func (s *Store) trimLocked() []string {
	if len(s.items) <= s.maxItems {
		return nil
	}

	type aged struct {
		path string
		at   time.Time
	}
	all := make([]aged, 0, len(s.items))
	for p, at := range s.items {
		all = append(all, aged{p, at})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	var evicted []string
	for _, a := range all[:len(all)-s.maxItems] {
		delete(s.items, a.path)
		evicted = append(evicted, a.path)
	}

	return evicted
}
