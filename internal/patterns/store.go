// Package patterns persists learned skip-control patterns per application.
package patterns

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/skipad/internal/model"
)

// DefaultFileName is the document name inside the data directory.
const DefaultFileName = "nodes.json"

// Options configures a Store.
type Options struct {
	Path   string
	Logger zerolog.Logger
	// Now stamps saved records. Defaults to time.Now.
	Now func() time.Time
}

// Store holds the in-memory mapping of app id to patterns loaded from one
// JSON document. The mapping is swapped wholesale on every successful load.
type Store struct {
	path  string
	log   zerolog.Logger
	now   func() time.Time
	state atomic.Pointer[map[string][]model.Pattern]

	saveMu sync.Mutex
}

// New creates a store for the document at opts.Path. It does not read the
// document; call Load.
func New(opts Options) *Store {
	s := &Store{path: opts.Path, log: opts.Logger, now: opts.Now}
	if s.now == nil {
		s.now = time.Now
	}
	empty := map[string][]model.Pattern{}
	s.state.Store(&empty)
	return s
}

// Path returns the document path.
func (s *Store) Path() string { return s.path }

// Load replaces the in-memory mapping with the document's contents. A
// missing document leaves the mapping untouched. A malformed document is
// rejected as a whole and the prior mapping is kept.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug().Str("path", s.path).Msg("pattern document not found, keeping current state")
		return nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("reading pattern document")
		return fmt.Errorf("reading patterns: %w", err)
	}

	mapping, err := parseDocument(s.path, data)
	if err != nil {
		s.log.Error().Err(err).Msg("rejected pattern document")
		return err
	}
	s.state.Store(&mapping)

	total := 0
	for _, list := range mapping {
		total += len(list)
	}
	s.log.Info().Int("apps", len(mapping)).Int("patterns", total).Msg("patterns loaded")
	return nil
}

// Save appends p to its application's list in the document, writes the
// document atomically and reloads. Saves are serialized; readers keep
// seeing the previous mapping until the reload completes.
func (s *Store) Save(p model.Pattern) error {
	if p.AppID == "" {
		return ErrNoApp
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading patterns: %w", err)
	}
	// Refuse to overwrite a document we could not load.
	if _, err := parseDocument(s.path, data); err != nil {
		return err
	}

	out, err := appendRecord(data, p.AppID, newRecord(p, s.now().Format(TimestampLayout)))
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, out); err != nil {
		return fmt.Errorf("saving patterns: %w", err)
	}
	s.log.Info().
		Str("app", p.AppID).
		Str("class", p.ClassName).
		Str("bounds", p.Bounds.String()).
		Msg("pattern saved")
	return s.Load()
}

// Query returns the patterns for appID in document order. The slice must
// not be modified.
func (s *Store) Query(appID string) []model.Pattern {
	return (*s.state.Load())[appID]
}

// Apps returns the application ids that have patterns, sorted.
func (s *Store) Apps() []string {
	m := *s.state.Load()
	apps := make([]string, 0, len(m))
	for app := range m {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps
}

// All returns a copy of the current mapping.
func (s *Store) All() map[string][]model.Pattern {
	m := *s.state.Load()
	out := make(map[string][]model.Pattern, len(m))
	for app, list := range m {
		out[app] = append([]model.Pattern(nil), list...)
	}
	return out
}
