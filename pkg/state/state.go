// Package state persists run state between invocations, tracking which
// items earlier runs already delivered.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"
)

// RunState holds the identities delivered by previous runs. Fresh is set
// when no usable state file existed and the recency window applies.
type RunState struct {
	LastRun time.Time
	Seen    map[string]struct{}
	Fresh   bool
}

// Contains reports whether the identity was delivered by a previous run
func (s RunState) Contains(guid string) bool {
	_, ok := s.Seen[guid]
	return ok
}

// Add records an identity as delivered
func (s *RunState) Add(guid string) {
	if s.Seen == nil {
		s.Seen = make(map[string]struct{})
	}
	s.Seen[guid] = struct{}{}
}

// stateFile is the on-disk representation, kept flat and sorted so the
// file stays readable and diffs cleanly between runs
type stateFile struct {
	LastRun time.Time `json:"last_run"`
	Seen    []string  `json:"seen"`
}

// Store loads and saves run state at a fixed path
type Store struct {
	path   string
	window time.Duration
}

// NewStore creates a store for the given state file path. The window is
// how far back a fresh state reaches when the file is missing or corrupt.
func NewStore(path string, window time.Duration) *Store {
	return &Store{path: path, window: window}
}

// Load reads the state file. It never fails: a missing, unreadable or
// corrupt file yields a fresh state with LastRun set one window back.
func (s *Store) Load() RunState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			lgr.Printf("[DEBUG] no state file at %s, starting fresh", s.path)
		} else {
			lgr.Printf("[WARN] can't read state file %s, starting fresh: %v", s.path, err)
		}
		return s.fresh()
	}

	var parsed stateFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		lgr.Printf("[WARN] corrupt state file %s, starting fresh: %v", s.path, err)
		return s.fresh()
	}
	if parsed.LastRun.IsZero() {
		lgr.Printf("[WARN] state file %s has no last run timestamp, starting fresh", s.path)
		return s.fresh()
	}

	seen := make(map[string]struct{}, len(parsed.Seen))
	for _, guid := range parsed.Seen {
		seen[guid] = struct{}{}
	}
	return RunState{LastRun: parsed.LastRun, Seen: seen}
}

// Save writes the state file atomically, going through a temp file in the
// same directory so a crash mid-write can't leave a truncated state behind.
func (s *Store) Save(st RunState) error {
	seen := make([]string, 0, len(st.Seen))
	for guid := range st.Seen {
		seen = append(seen, guid)
	}
	sort.Strings(seen)

	data, err := json.MarshalIndent(stateFile{LastRun: st.LastRun, Seen: seen}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// fresh builds the fallback state reaching one window back from now
func (s *Store) fresh() RunState {
	return RunState{
		LastRun: time.Now().Add(-s.window),
		Seen:    make(map[string]struct{}),
		Fresh:   true,
	}
}
