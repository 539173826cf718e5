package permission

import (
	"fmt"

	"canvassist/internal/auth"
)

// Gate answers allow/deny questions against a Registry. It is checked
// twice per action: once when filtering the catalog offered to the
// provider, and again immediately before execution.
type Gate struct {
	registry *Registry
}

// NewGate returns a gate over the given registry.
func NewGate(registry *Registry) *Gate {
	return &Gate{registry: registry}
}

// Denial records a refused action.
type Denial struct {
	Action  string
	Missing auth.Permission
	Unknown bool
}

// Reason returns a human-readable explanation for the denial.
func (d *Denial) Reason() string {
	if d.Unknown {
		return fmt.Sprintf("action %q is not available", d.Action)
	}
	return fmt.Sprintf("action %q requires the %s permission", d.Action, d.Missing)
}

// IsAllowed reports whether the principal may use the action. Unknown
// action ids are denied.
func (g *Gate) IsAllowed(p *auth.Principal, actionID string) bool {
	return g.Check(p, actionID) == nil
}

// Check returns nil when the action is allowed, or a Denial describing
// why not.
func (g *Gate) Check(p *auth.Principal, actionID string) *Denial {
	required, known := g.registry.Required(actionID)
	if !known {
		return &Denial{Action: actionID, Unknown: true}
	}
	if required == "" {
		return nil
	}
	if p != nil && p.Has(required) {
		return nil
	}
	return &Denial{Action: actionID, Missing: required}
}

// FilterCatalog returns the subset of action ids the principal may use,
// preserving the input order.
func (g *Gate) FilterCatalog(p *auth.Principal, actionIDs []string) []string {
	allowed := make([]string, 0, len(actionIDs))
	for _, id := range actionIDs {
		if g.IsAllowed(p, id) {
			allowed = append(allowed, id)
		}
	}
	return allowed
}
