// Package orchestrator drives one conversation turn at a time: it
// grounds the provider in the current canvas state, filters the action
// catalog for the principal, dispatches proposed actions through the
// executor, and suspends when the target of an instruction is unclear.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canvassist/internal/action"
	"canvassist/internal/auth"
	"canvassist/internal/canvas"
	"canvassist/internal/logging"
	"canvassist/internal/permission"
	"canvassist/internal/provider"
)

// Status is the terminal state of a turn.
type Status string

const (
	StatusTerminal  Status = "terminal"
	StatusSuspended Status = "suspended"
)

// Input is one user instruction.
type Input struct {
	ThreadID    string
	Instruction string
	Principal   *auth.Principal
}

// Output is the result of a turn: a reply and the state subset that
// actually changed, or a suspension waiting for a choice.
type Output struct {
	Reply     string
	Changed   *canvas.Delta
	Status    Status
	Interrupt *Interrupt
}

// Config tunes the orchestrator.
type Config struct {
	// HistoryWindow bounds how many recent entries ground each
	// decision.
	HistoryWindow int

	// DispatchCap bounds mutating actions per turn.
	DispatchCap int

	// ProviderTimeout bounds one provider call.
	ProviderTimeout time.Duration
}

// Orchestrator runs turns against a store, catalog, and provider.
type Orchestrator struct {
	store    *canvas.Store
	catalog  *action.Catalog
	gate     *permission.Gate
	exec     *action.Executor
	provider provider.Provider
	threads  *Threads
	history  *HistoryStore
	cfg      Config
}

// New builds an orchestrator. history may be nil to disable
// persistence.
func New(store *canvas.Store, catalog *action.Catalog, gate *permission.Gate, prov provider.Provider, history *HistoryStore, cfg Config) *Orchestrator {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 12
	}
	if cfg.DispatchCap <= 0 {
		cfg.DispatchCap = 8
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 60 * time.Second
	}
	return &Orchestrator{
		store:    store,
		catalog:  catalog,
		gate:     gate,
		exec:     action.NewExecutor(catalog, gate, store),
		provider: prov,
		threads:  NewThreads(),
		history:  history,
		cfg:      cfg,
	}
}

// Thread exposes a conversation thread, loading persisted history on
// first access.
func (o *Orchestrator) Thread(id string) *Thread {
	t := o.threads.Get(id)
	if o.history != nil && len(t.Entries()) == 0 {
		if entries, err := o.history.Load(id); err == nil && len(entries) > 0 {
			t.setEntries(entries)
		}
	}
	return t
}

// HandleTurn processes one instruction. It returns a suspended output
// when the instruction's target item cannot be determined; the caller
// then calls Resume or Cancel.
func (o *Orchestrator) HandleTurn(ctx context.Context, input Input) (*Output, error) {
	if input.Principal == nil {
		return nil, errors.New("principal is required")
	}

	thread := o.Thread(input.ThreadID)
	if err := thread.begin(); err != nil {
		return nil, err
	}
	defer thread.end()
	defer o.persist(thread)

	thread.append(Entry{Role: RoleUser, Text: input.Instruction})

	snapshot := o.store.Snapshot()
	if needsDisambiguation(input.Instruction, snapshot) {
		susp := newChooseItemSuspension(input.Instruction, input.Principal, snapshot)
		thread.suspend(susp)
		logging.Info("turn suspended for disambiguation", "thread", thread.ID)
		return &Output{Status: StatusSuspended, Interrupt: susp.Interrupt}, nil
	}

	return o.runTurn(ctx, thread, input.Principal, "")
}

// Resume continues a suspended turn with the chosen item id. An empty
// choice cancels: the turn ends with a request to restate and no state
// change.
func (o *Orchestrator) Resume(ctx context.Context, threadID, chosenItemID string) (*Output, error) {
	thread := o.Thread(threadID)

	if chosenItemID == "" {
		return o.Cancel(threadID)
	}

	susp, err := thread.beginResume()
	if err != nil {
		return nil, err
	}
	defer thread.end()
	defer o.persist(thread)

	logging.Info("turn resumed", "thread", threadID, "chosen", chosenItemID)
	return o.runTurn(ctx, thread, susp.Principal, chosenItemID)
}

// Cancel drops a pending suspension with no side effects.
func (o *Orchestrator) Cancel(threadID string) (*Output, error) {
	thread := o.Thread(threadID)
	if _, err := thread.cancelSuspension(); err != nil {
		return nil, err
	}

	reply := "No problem. Could you restate what you would like to do, naming the item?"
	thread.append(Entry{Role: RoleAssistant, Text: reply})
	o.persist(thread)
	return &Output{Reply: reply, Status: StatusTerminal}, nil
}

// runTurn is the decision/dispatch loop. Each round grounds the
// provider in the freshest snapshot; dispatch is sequential and bounded
// by the mutation cap.
func (o *Orchestrator) runTurn(ctx context.Context, thread *Thread, p *auth.Principal, resolvedTarget string) (*Output, error) {
	allowed := o.gate.FilterCatalog(p, o.catalog.Names())
	changed := &canvas.Delta{}
	mutations := 0

	for round := 0; ; round++ {
		if round > o.cfg.DispatchCap {
			reply := "I could not settle on a final answer this turn. " + summaryOrNothing(changed)
			thread.append(Entry{Role: RoleAssistant, Text: reply})
			logging.Warn("decision round cap reached", "thread", thread.ID)
			return &Output{Reply: reply, Changed: changed, Status: StatusTerminal}, nil
		}

		snapshot := o.store.Snapshot()
		req := &provider.Request{
			System:       buildSystem(snapshot, resolvedTarget),
			History:      buildHistory(thread.recent(o.cfg.HistoryWindow)),
			Declarations: o.catalog.Declarations(allowed),
		}

		decCtx, cancel := context.WithTimeout(ctx, o.cfg.ProviderTimeout)
		decision, err := o.provider.Decide(decCtx, req)
		cancel()
		if err != nil {
			// Abort cleanly: committed actions stay committed, the
			// remainder of the turn is dropped and the caller may
			// retry the whole turn.
			logging.Warn("provider call failed", "thread", thread.ID, "error", err)
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
			}
			return nil, err
		}

		if len(decision.Proposals) == 0 {
			reply := decision.Text
			if reply == "" {
				reply = "Done."
			}
			thread.append(Entry{Role: RoleAssistant, Text: reply})
			return &Output{Reply: reply, Changed: changed, Status: StatusTerminal}, nil
		}

		for _, proposal := range decision.Proposals {
			desc, known := o.catalog.Get(proposal.Name)

			// An item-scoped proposal without a target either binds to
			// the resolved choice or suspends the turn.
			if known && desc.ItemScoped {
				if id, _ := action.GetString(proposal.Args, "itemId"); id == "" {
					if resolvedTarget == "" {
						susp := newChooseItemSuspension(thread.lastUserText(), p, o.store.Snapshot())
						thread.suspend(susp)
						logging.Info("turn suspended mid-dispatch", "thread", thread.ID, "action", proposal.Name)
						return &Output{Changed: changed, Status: StatusSuspended, Interrupt: susp.Interrupt}, nil
					}
					if proposal.Args == nil {
						proposal.Args = make(map[string]any)
					}
					proposal.Args["itemId"] = resolvedTarget
				}
			}

			res := o.exec.Execute(ctx, p, proposal.Name, proposal.Args)
			thread.append(Entry{
				Role:   RoleAction,
				Action: proposal.Name,
				Args:   proposal.Args,
				Result: res.ToMap(),
			})

			if res.Success {
				changed.Merge(res.Delta)
				if known && desc.Mutating {
					mutations++
				}
			}

			if mutations >= o.cfg.DispatchCap {
				reply := fmt.Sprintf("Stopping after %d changes this turn. So far: %s.", mutations, changed.Summary)
				thread.append(Entry{Role: RoleAssistant, Text: reply})
				logging.Warn("dispatch cap reached", "thread", thread.ID, "cap", o.cfg.DispatchCap)
				return &Output{Reply: reply, Changed: changed, Status: StatusTerminal}, nil
			}
		}

		// Loop back so the next decision is grounded in the mutated
		// state. The resolved target only binds the round it resumed.
		resolvedTarget = ""
	}
}

func summaryOrNothing(changed *canvas.Delta) string {
	if changed.Empty() {
		return "Nothing was changed."
	}
	return "So far: " + changed.Summary + "."
}

func (o *Orchestrator) persist(thread *Thread) {
	if o.history == nil {
		return
	}
	if err := o.history.Save(thread.ID, thread.Entries()); err != nil {
		logging.Error("failed to persist thread history", "thread", thread.ID, "error", err)
	}
}
