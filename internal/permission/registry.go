// Package permission maps action identifiers to required permissions
// and enforces them for a principal.
package permission

import (
	"sync"

	"canvassist/internal/auth"
	"canvassist/internal/logging"
)

// Registry is the static action to required-permission mapping. It is
// populated at startup and read-only afterwards.
type Registry struct {
	mu       sync.RWMutex
	required map[string]auth.Permission
	known    map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		required: make(map[string]auth.Permission),
		known:    make(map[string]bool),
	}
}

// Register records an action and its required permission. An empty
// permission means the action is universally allowed.
func (r *Registry) Register(actionID string, required auth.Permission) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.known[actionID] {
		logging.Warn("action registered twice", "action", actionID)
	}
	r.known[actionID] = true
	if required != "" {
		r.required[actionID] = required
	}
}

// Required returns the permission an action requires. The second return
// is false for unknown actions; unknown must be treated as denied, not
// as "no requirement".
func (r *Registry) Required(actionID string) (auth.Permission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.known[actionID] {
		return "", false
	}
	return r.required[actionID], true
}

// Known reports whether the action id is registered.
func (r *Registry) Known(actionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.known[actionID]
}
