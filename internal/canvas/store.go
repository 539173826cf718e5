package canvas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"canvassist/internal/fileutil"
	"canvassist/internal/logging"
)

// Store owns the shared state. All mutation goes through Apply, which
// serializes writers and commits one action's effect at a time. Readers
// take a deep snapshot so grounding context never observes a
// half-applied mutation.
type Store struct {
	mu    sync.Mutex
	state *State
	path  string
}

// NewStore returns an in-memory store over the given state. A nil state
// starts empty.
func NewStore(state *State) *Store {
	if state == nil {
		state = NewState()
	}
	return &Store{state: state}
}

// NewFileStore loads state from path, or starts empty when the file
// does not exist. Applied deltas are persisted back to path.
func NewFileStore(path string) (*Store, error) {
	s := &Store{state: NewState(), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(data, s.state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return s, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Apply runs mutate against a clone of the current state and swaps the
// clone in only when mutate succeeds, so a failed action leaves no
// partial change. When the delta carries a summary it becomes the new
// last-action marker.
func (s *Store) Apply(mutate func(*State) (*Delta, error)) (*Delta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	delta, err := mutate(next)
	if err != nil {
		return nil, err
	}

	if delta != nil && delta.Summary != "" {
		next.LastAction = delta.Summary
	}
	s.state = next

	if s.path != "" {
		if err := s.persist(); err != nil {
			logging.Error("failed to persist state", "path", s.path, "error", err)
		}
	}
	return delta, nil
}

// Replace swaps in an externally loaded state, as when the state file
// changed on disk.
func (s *Store) Replace(state *State) {
	if state == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
}

// Path returns the backing file path, or "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return fileutil.AtomicWrite(s.path, data, 0644)
}
