package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvassist/internal/action"
	"canvassist/internal/auth"
	"canvassist/internal/canvas"
	"canvassist/internal/permission"
	"canvassist/internal/provider"
)

func newOrchestrator(t *testing.T, store *canvas.Store, prov provider.Provider, cfg Config) *Orchestrator {
	t.Helper()
	catalog := action.DefaultCatalog()
	require.NoError(t, catalog.Validate())
	gate := permission.NewGate(catalog.BuildRegistry())
	return New(store, catalog, gate, prov, nil, cfg)
}

func editor() *auth.Principal {
	return auth.NewPrincipal("u1", "editor", auth.RoleEditor)
}

func viewer() *auth.Principal {
	return auth.NewPrincipal("u2", "viewer", auth.RoleViewer)
}

func seedNote(t *testing.T, store *canvas.Store, name string) string {
	t.Helper()
	var id string
	_, err := store.Apply(func(st *canvas.State) (*canvas.Delta, error) {
		item, err := canvas.NewItem(canvas.TypeNote, name)
		if err != nil {
			return nil, err
		}
		st.Items = append(st.Items, item)
		id = item.ID
		return &canvas.Delta{Created: []string{item.ID}}, nil
	})
	require.NoError(t, err)
	return id
}

func TestEditorCreatesProject(t *testing.T) {
	store := canvas.NewStore(nil)
	prov := provider.NewScripted(
		&provider.Decision{Proposals: []provider.Proposal{
			{Name: "createItem", Args: map[string]any{"type": "project", "name": "Launch"}},
		}},
		&provider.Decision{Text: "I created the project for you."},
	)
	o := newOrchestrator(t, store, prov, Config{})

	out, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "create a project called Launch",
		Principal:   editor(),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusTerminal, out.Status)
	assert.Equal(t, "I created the project for you.", out.Reply)
	require.Len(t, out.Changed.Created, 1)

	snap := store.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, out.Changed.Created[0], snap.Items[0].ID)
	assert.Equal(t, "Launch", snap.Items[0].Name)
}

func TestViewerDeleteDenied(t *testing.T) {
	store := canvas.NewStore(nil)
	id := seedNote(t, store, "keep me")
	before := store.Snapshot()

	prov := provider.NewScripted(
		&provider.Decision{Proposals: []provider.Proposal{
			{Name: "deleteItem", Args: map[string]any{"itemId": id}},
		}},
		&provider.Decision{Text: "You do not have permission to delete items."},
	)
	o := newOrchestrator(t, store, prov, Config{})

	out, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "delete item " + id,
		Principal:   viewer(),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusTerminal, out.Status)
	assert.Contains(t, out.Reply, "permission")
	assert.True(t, out.Changed.Empty())
	assert.Equal(t, before, store.Snapshot())

	// The viewer's filtered catalog never offered deleteItem.
	for _, req := range prov.Requests() {
		for _, decl := range req.Declarations {
			assert.NotEqual(t, "deleteItem", decl.Name)
		}
	}

	// The denial is recorded as an ordinary action result.
	var denied bool
	for _, e := range o.Thread("t1").Entries() {
		if e.Role == RoleAction && e.Action == "deleteItem" {
			assert.Equal(t, false, e.Result["success"])
			assert.Equal(t, "permission_denied", e.Result["kind"])
			denied = true
		}
	}
	assert.True(t, denied)
}

func TestUnknownActionRejected(t *testing.T) {
	store := canvas.NewStore(nil)
	before := store.Snapshot()

	prov := provider.NewScripted(
		&provider.Decision{Proposals: []provider.Proposal{
			{Name: "dropAllItems", Args: nil},
		}},
		&provider.Decision{Text: "That is not something I can do."},
	)
	o := newOrchestrator(t, store, prov, Config{})

	out, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "drop everything",
		Principal:   editor(),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusTerminal, out.Status)
	assert.True(t, out.Changed.Empty())
	assert.Equal(t, before, store.Snapshot())
}

func TestNoActionTurnLeavesStateUntouched(t *testing.T) {
	store := canvas.NewStore(nil)
	seedNote(t, store, "a note")
	before := store.Snapshot()

	prov := provider.NewScripted(&provider.Decision{Text: "You have one note."})
	o := newOrchestrator(t, store, prov, Config{})

	out, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "what is on the canvas?",
		Principal:   viewer(),
	})
	require.NoError(t, err)
	assert.Equal(t, "You have one note.", out.Reply)
	assert.Equal(t, before, store.Snapshot())
}

func TestDisambiguationSuspendAndResume(t *testing.T) {
	store := canvas.NewStore(nil)
	seedNote(t, store, "first")
	target := seedNote(t, store, "second")
	// Clear the marker left by seeding so the back-reference is
	// unresolvable.
	_, err := store.Apply(func(st *canvas.State) (*canvas.Delta, error) {
		st.LastAction = ""
		return nil, nil
	})
	require.NoError(t, err)

	prov := provider.NewScripted(
		&provider.Decision{Proposals: []provider.Proposal{
			{Name: "setItemName", Args: map[string]any{"name": "renamed"}},
		}},
		&provider.Decision{Text: "Renamed it."},
	)
	o := newOrchestrator(t, store, prov, Config{})

	out, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "rename it",
		Principal:   editor(),
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuspended, out.Status)
	require.NotNil(t, out.Interrupt)
	assert.Equal(t, InterruptChooseItem, out.Interrupt.Type)
	assert.Contains(t, out.Interrupt.Content, target)

	// No provider call and no mutation happened while suspended.
	assert.Empty(t, prov.Requests())

	// A new instruction is refused while parked.
	_, err = o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "another thing",
		Principal:   editor(),
	})
	assert.ErrorIs(t, err, ErrThreadSuspended)

	resumed, err := o.Resume(context.Background(), "t1", target)
	require.NoError(t, err)
	assert.Equal(t, StatusTerminal, resumed.Status)
	assert.Equal(t, "Renamed it.", resumed.Reply)

	snap := store.Snapshot()
	assert.Equal(t, "renamed", snap.Item(target).Name)
	assert.Equal(t, "first", snap.Items[0].Name)
}

func TestDisambiguationCancel(t *testing.T) {
	store := canvas.NewStore(nil)
	seedNote(t, store, "only")
	_, err := store.Apply(func(st *canvas.State) (*canvas.Delta, error) {
		st.LastAction = ""
		return nil, nil
	})
	require.NoError(t, err)
	before := store.Snapshot()

	o := newOrchestrator(t, store, provider.NewScripted(), Config{})

	out, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "delete it",
		Principal:   editor(),
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuspended, out.Status)

	cancelled, err := o.Resume(context.Background(), "t1", "")
	require.NoError(t, err)
	assert.Equal(t, StatusTerminal, cancelled.Status)
	assert.Contains(t, cancelled.Reply, "restate")
	assert.Equal(t, before, store.Snapshot())

	// The thread is usable again.
	assert.False(t, o.Thread("t1").Suspended())
}

func TestMidDispatchSuspension(t *testing.T) {
	store := canvas.NewStore(nil)
	target := seedNote(t, store, "the note")
	_, err := store.Apply(func(st *canvas.State) (*canvas.Delta, error) {
		st.Item(target).Note.Field1 = "scratch text"
		return nil, nil
	})
	require.NoError(t, err)

	// The provider proposes an item-scoped action without a target,
	// twice: once before the suspension, once after the resume binds
	// the chosen item.
	prov := provider.NewScripted(
		&provider.Decision{Proposals: []provider.Proposal{
			{Name: "clearNoteField1", Args: map[string]any{}},
		}},
		&provider.Decision{Proposals: []provider.Proposal{
			{Name: "clearNoteField1", Args: map[string]any{}},
		}},
		&provider.Decision{Text: "Cleared."},
	)
	o := newOrchestrator(t, store, prov, Config{})

	out, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "clear the note contents",
		Principal:   editor(),
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuspended, out.Status)
	assert.Equal(t, "scratch text", store.Snapshot().Item(target).Note.Field1)

	resumed, err := o.Resume(context.Background(), "t1", target)
	require.NoError(t, err)
	assert.Equal(t, StatusTerminal, resumed.Status)
	assert.Empty(t, store.Snapshot().Item(target).Note.Field1)
}

func TestDispatchCap(t *testing.T) {
	store := canvas.NewStore(nil)

	// Every decision proposes another mutation and never terminates.
	decisions := make([]*provider.Decision, 0, 10)
	for i := 0; i < 10; i++ {
		decisions = append(decisions, &provider.Decision{Proposals: []provider.Proposal{
			{Name: "createItem", Args: map[string]any{"type": "note"}},
		}})
	}
	o := newOrchestrator(t, store, provider.NewScripted(decisions...), Config{DispatchCap: 3})

	out, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "make lots of notes",
		Principal:   editor(),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusTerminal, out.Status)
	assert.Len(t, store.Snapshot().Items, 3)
	assert.Len(t, out.Changed.Created, 3)
}

func TestProviderFailureAbortsCleanly(t *testing.T) {
	store := canvas.NewStore(nil)
	before := store.Snapshot()

	prov := provider.NewScripted()
	prov.Fail(provider.ErrUnavailable)
	o := newOrchestrator(t, store, prov, Config{})

	_, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "hello",
		Principal:   editor(),
	})
	require.Error(t, err)
	assert.Equal(t, before, store.Snapshot())

	// The thread is released for a retry of the whole turn.
	prov.Fail(nil)
	out, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "hello again",
		Principal:   editor(),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusTerminal, out.Status)
}

func TestProviderTimeout(t *testing.T) {
	store := canvas.NewStore(nil)
	prov := &slowProvider{delay: 200 * time.Millisecond}
	o := newOrchestrator(t, store, prov, Config{ProviderTimeout: 20 * time.Millisecond})

	_, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "hello",
		Principal:   editor(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

// slowProvider blocks until its context expires.
type slowProvider struct {
	delay time.Duration
}

func (s *slowProvider) Decide(ctx context.Context, req *provider.Request) (*provider.Decision, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return &provider.Decision{Text: "too late"}, nil
	}
}

func (s *slowProvider) Close() error { return nil }

func TestGroundingContextSupersedesHistory(t *testing.T) {
	store := canvas.NewStore(nil)
	id := seedNote(t, store, "current name")

	prov := provider.NewScripted(&provider.Decision{Text: "ok"})
	o := newOrchestrator(t, store, prov, Config{HistoryWindow: 2})

	thread := o.Thread("t1")
	thread.append(Entry{Role: RoleUser, Text: "old turn"})
	thread.append(Entry{Role: RoleAssistant, Text: "stale claim about items"})

	_, err := o.HandleTurn(context.Background(), Input{
		ThreadID:    "t1",
		Instruction: "what do I have?",
		Principal:   viewer(),
	})
	require.NoError(t, err)

	reqs := prov.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].System, "ground truth")
	assert.Contains(t, reqs[0].System, id)
	// Only the bounded suffix of history is sent.
	assert.Len(t, reqs[0].History, 2)
}

func TestNeedsDisambiguationHeuristic(t *testing.T) {
	empty := canvas.NewState()
	assert.False(t, needsDisambiguation("rename it", empty))

	withItem := canvas.NewState()
	item, err := canvas.NewItem(canvas.TypeNote, "groceries")
	require.NoError(t, err)
	withItem.Items = append(withItem.Items, item)

	assert.True(t, needsDisambiguation("rename it", withItem))
	assert.True(t, needsDisambiguation("delete that one", withItem))
	assert.False(t, needsDisambiguation("what items exist?", withItem))
	assert.False(t, needsDisambiguation("rename "+item.ID, withItem))
	assert.False(t, needsDisambiguation("edit the groceries note", withItem))

	withItem.LastAction = "created note " + item.ID
	assert.False(t, needsDisambiguation("rename it", withItem))
}
