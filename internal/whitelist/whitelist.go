// Package whitelist stores the applications that are never monitored.
package whitelist

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
const CurrentSchemaVersion = 1

// ErrEmptyAppID is returned when an operation is given a blank app id.
var ErrEmptyAppID = errors.New("empty app id")

// Store is a persisted set of application ids with an in-memory cache.
// Reads pick up changes committed by other processes sharing the file.
type Store struct {
	db    *sql.DB
	log   zerolog.Logger
	mu    sync.RWMutex
	cache map[string]struct{}
	// version is the data_version the cache was loaded at.
	version int64
}

// Open opens or creates the database at path and loads the cache.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open whitelist: %w", err)
	}
	// data_version is only comparable on one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, log: logger, cache: make(map[string]struct{})}
	if err := s.reload(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) dataVersion() (int64, error) {
	var v int64
	if err := s.db.QueryRow("PRAGMA data_version;").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to get data_version: %w", err)
	}
	return v, nil
}

// refresh reloads the cache when another connection has committed since
// the last load. Errors keep the current cache.
func (s *Store) refresh() {
	v, err := s.dataVersion()
	if err != nil {
		s.log.Warn().Err(err).Msg("whitelist refresh skipped")
		return
	}
	s.mu.RLock()
	current := v == s.version
	s.mu.RUnlock()
	if current {
		return
	}
	if err := s.reload(); err != nil {
		s.log.Warn().Err(err).Msg("whitelist refresh failed")
	}
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("failed to get user_version: %w", err)
	}
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS whitelist (
		  app_id   TEXT PRIMARY KEY,
		  added_at INTEGER NOT NULL
		);`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", CurrentSchemaVersion)); err != nil {
			return fmt.Errorf("failed to set user_version: %w", err)
		}
	}
	return nil
}

func (s *Store) reload() error {
	version, err := s.dataVersion()
	if err != nil {
		return err
	}
	cache, err := s.readAll()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache = cache
	s.version = version
	s.mu.Unlock()
	s.log.Debug().Int("apps", len(cache)).Int64("data_version", version).Msg("whitelist loaded")
	return nil
}

// readAll returns every row. The connection is released before it returns.
func (s *Store) readAll() (map[string]struct{}, error) {
	rows, err := s.db.Query("SELECT app_id FROM whitelist")
	if err != nil {
		return nil, fmt.Errorf("failed to read whitelist: %w", err)
	}
	defer rows.Close()

	cache := make(map[string]struct{})
	for rows.Next() {
		var app string
		if err := rows.Scan(&app); err != nil {
			return nil, fmt.Errorf("failed to scan whitelist row: %w", err)
		}
		cache[app] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read whitelist: %w", err)
	}
	return cache, nil
}

// IsWhitelisted reports whether appID is in the set.
func (s *Store) IsWhitelisted(appID string) bool {
	s.refresh()
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[appID]
	return ok
}

// Add inserts appID and reports whether it was newly added.
func (s *Store) Add(appID string) (bool, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return false, ErrEmptyAppID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("INSERT OR IGNORE INTO whitelist (app_id, added_at) VALUES (?, ?)", appID, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to add %s: %w", appID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	s.cache[appID] = struct{}{}
	if n > 0 {
		s.log.Info().Str("app", appID).Msg("whitelisted")
	}
	return n > 0, nil
}

// Remove deletes appID and reports whether it was present.
func (s *Store) Remove(appID string) (bool, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return false, ErrEmptyAppID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM whitelist WHERE app_id = ?", appID)
	if err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", appID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	delete(s.cache, appID)
	if n > 0 {
		s.log.Info().Str("app", appID).Msg("removed from whitelist")
	}
	return n > 0, nil
}

// List returns the whitelisted app ids, sorted.
func (s *Store) List() []string {
	s.refresh()
	s.mu.RLock()
	defer s.mu.RUnlock()
	apps := make([]string, 0, len(s.cache))
	for app := range s.cache {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM whitelist")
	if err != nil {
		return 0, fmt.Errorf("failed to clear whitelist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	s.cache = make(map[string]struct{})
	s.log.Info().Int64("removed", n).Msg("whitelist cleared")
	return int(n), nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
