package canvas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"canvassist/internal/logging"
)

// Watcher reloads the store when its backing state file is changed by
// another process. Writes made through the store itself also trigger
// events; reloading from our own write is harmless because the file
// content matches the in-memory state.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	store     *Store
	debounce  time.Duration

	mu       sync.Mutex
	pending  *time.Timer
	done     chan struct{}
	running  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the store's backing file. The store
// must be file-backed.
func NewWatcher(store *Store) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		store:     store,
		debounce:  300 * time.Millisecond,
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching for state file changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory rather than the file: atomic rename replaces
	// the inode, which drops a direct file watch.
	dir := filepath.Dir(w.store.Path())
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		close(w.done)
	})
	return w.fsWatcher.Close()
}

func (w *Watcher) processEvents() {
	target := w.store.Path()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logging.Warn("state watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		if err := w.Reload(); err != nil {
			logging.Warn("failed to reload state file", "error", err)
		}
	})
}

// Reload reads the state file and swaps it into the store.
func (w *Watcher) Reload() error {
	return ReloadStore(w.store)
}

// ReloadStore reads the store's backing file and replaces the in-memory
// state with its contents.
func ReloadStore(store *Store) error {
	data, err := os.ReadFile(store.Path())
	if err != nil {
		return err
	}
	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return err
	}
	store.Replace(state)
	logging.Debug("state reloaded from file", "path", store.Path(), "items", len(state.Items))
	return nil
}
