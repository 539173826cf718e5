package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"canvassist/internal/fileutil"
)

// HistoryFile is the on-disk form of one thread's conversation.
type HistoryFile struct {
	ThreadID string    `json:"thread_id"`
	SavedAt  time.Time `json:"saved_at"`
	Entries  []Entry   `json:"entries"`
}

// HistoryStore persists thread conversations as one JSON file per
// thread.
type HistoryStore struct {
	dataDir string
}

// NewHistoryStore creates a history store rooted at dataDir.
func NewHistoryStore(dataDir string) (*HistoryStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	return &HistoryStore{dataDir: dataDir}, nil
}

// Save writes the thread's conversation to disk.
func (h *HistoryStore) Save(threadID string, entries []Entry) error {
	file := HistoryFile{
		ThreadID: threadID,
		SavedAt:  time.Now(),
		Entries:  entries,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.AtomicWrite(h.path(threadID), data, 0644)
}

// Load reads a thread's conversation. A missing file yields an empty
// history.
func (h *HistoryStore) Load(threadID string) ([]Entry, error) {
	data, err := os.ReadFile(h.path(threadID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var file HistoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse history for thread %s: %w", threadID, err)
	}
	return file.Entries, nil
}

func (h *HistoryStore) path(threadID string) string {
	return filepath.Join(h.dataDir, "thread-"+threadID+".json")
}
