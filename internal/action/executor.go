package action

import (
	"context"

	"canvassist/internal/auth"
	"canvassist/internal/canvas"
	"canvassist/internal/logging"
	"canvassist/internal/permission"
)

// Executor applies one proposed action at a time to the store. Every
// call re-checks authorization independently of catalog filtering; the
// provider's output is not trusted.
type Executor struct {
	catalog *Catalog
	gate    *permission.Gate
	store   *canvas.Store
}

// NewExecutor returns an executor over the given catalog, gate, and
// store.
func NewExecutor(catalog *Catalog, gate *permission.Gate, store *canvas.Store) *Executor {
	return &Executor{catalog: catalog, gate: gate, store: store}
}

// Execute runs one action for the principal. Failures come back as
// unsuccessful results, never as Go errors; everything here is
// recoverable within the turn.
func (e *Executor) Execute(ctx context.Context, p *auth.Principal, name string, args map[string]any) Result {
	if err := ctx.Err(); err != nil {
		return NewErrorResult(&Error{Kind: KindProviderUnavailable, Action: name, Msg: err.Error()})
	}

	desc, ok := e.catalog.Get(name)
	if !ok {
		logging.Warn("unknown action proposed", "action", name)
		return NewErrorResult(UnknownAction(name))
	}

	if denial := e.gate.Check(p, name); denial != nil {
		logging.Info("action denied",
			"action", name,
			"principal", p.Username,
			"missing", string(denial.Missing))
		if denial.Unknown {
			return NewErrorResult(UnknownAction(name))
		}
		return NewErrorResult(PermissionDenied(name, denial.Missing))
	}

	if desc.Validate != nil {
		if err := desc.Validate(args); err != nil {
			return NewErrorResult(AsError(name, err))
		}
	}

	var content string
	delta, err := e.store.Apply(func(st *canvas.State) (*canvas.Delta, error) {
		var applyErr error
		var d *canvas.Delta
		content, d, applyErr = desc.Apply(st, args)
		return d, applyErr
	})
	if err != nil {
		return NewErrorResult(AsError(name, err))
	}

	logging.Debug("action executed", "action", name, "principal", p.Username)
	return NewSuccessResult(content, delta)
}
