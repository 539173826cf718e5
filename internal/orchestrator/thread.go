package orchestrator

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrThreadBusy is returned when a new instruction arrives before
	// the thread's prior turn reached a terminal state.
	ErrThreadBusy = errors.New("a turn is already in progress on this thread")

	// ErrThreadSuspended is returned when a new instruction arrives
	// while the thread is parked at a disambiguation suspension.
	ErrThreadSuspended = errors.New("thread is waiting for a disambiguation choice")

	// ErrNotSuspended is returned by Resume when nothing is pending.
	ErrNotSuspended = errors.New("thread has no pending disambiguation")
)

// EntryRole classifies a conversation entry.
type EntryRole string

const (
	RoleUser      EntryRole = "user"
	RoleAssistant EntryRole = "assistant"
	RoleAction    EntryRole = "action"
)

// Entry is one conversation record on a thread.
type Entry struct {
	Role   EntryRole      `json:"role"`
	Text   string         `json:"text,omitempty"`
	Action string         `json:"action,omitempty"`
	Args   map[string]any `json:"args,omitempty"`
	Result map[string]any `json:"result,omitempty"`
	Time   time.Time      `json:"time"`
}

// Thread is one conversation. Turns on a thread are strictly ordered:
// begin fails while a prior turn is running or suspended.
type Thread struct {
	ID string

	mu      sync.Mutex
	busy    bool
	entries []Entry
	pending *Suspension
}

func newThread(id string) *Thread {
	return &Thread{ID: id}
}

// begin claims the thread for a new turn.
func (t *Thread) begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		return ErrThreadSuspended
	}
	if t.busy {
		return ErrThreadBusy
	}
	t.busy = true
	return nil
}

// beginResume claims the thread to resume its suspended turn, returning
// the suspension and clearing it.
func (t *Thread) beginResume() (*Suspension, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return nil, ErrNotSuspended
	}
	if t.busy {
		return nil, ErrThreadBusy
	}
	susp := t.pending
	t.pending = nil
	t.busy = true
	return susp, nil
}

// end releases the thread.
func (t *Thread) end() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.busy = false
}

// suspend parks the turn. Called while the turn holds the thread.
func (t *Thread) suspend(s *Suspension) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = s
}

// cancelSuspension drops a pending suspension, returning it.
func (t *Thread) cancelSuspension() (*Suspension, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return nil, ErrNotSuspended
	}
	susp := t.pending
	t.pending = nil
	return susp, nil
}

// Suspended reports whether the thread is parked at a disambiguation.
func (t *Thread) Suspended() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

func (t *Thread) append(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// recent returns the last n entries.
func (t *Thread) recent(n int) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	start := len(t.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]Entry, len(t.entries)-start)
	copy(out, t.entries[start:])
	return out
}

// lastUserText returns the most recent user instruction.
func (t *Thread) lastUserText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Role == RoleUser {
			return t.entries[i].Text
		}
	}
	return ""
}

// Entries returns a copy of the full conversation.
func (t *Thread) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Thread) setEntries(entries []Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = entries
}

// Threads tracks every conversation thread by id.
type Threads struct {
	mu sync.Mutex
	m  map[string]*Thread
}

// NewThreads returns an empty thread set.
func NewThreads() *Threads {
	return &Threads{m: make(map[string]*Thread)}
}

// Get returns the thread with the given id, creating it on first use.
func (ts *Threads) Get(id string) *Thread {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t, ok := ts.m[id]
	if !ok {
		t = newThread(id)
		ts.m[id] = t
	}
	return t
}
