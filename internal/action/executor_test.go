package action

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvassist/internal/auth"
	"canvassist/internal/canvas"
	"canvassist/internal/permission"
)

func newTestExecutor(t *testing.T) (*Executor, *canvas.Store) {
	t.Helper()
	catalog := DefaultCatalog()
	require.NoError(t, catalog.Validate())
	store := canvas.NewStore(nil)
	gate := permission.NewGate(catalog.BuildRegistry())
	return NewExecutor(catalog, gate, store), store
}

func admin() *auth.Principal {
	return auth.NewPrincipal("u0", "admin", auth.RoleAdmin)
}

func editor() *auth.Principal {
	return auth.NewPrincipal("u1", "editor", auth.RoleEditor)
}

func viewer() *auth.Principal {
	return auth.NewPrincipal("u2", "viewer", auth.RoleViewer)
}

func createProject(t *testing.T, exec *Executor, name string) string {
	t.Helper()
	res := exec.Execute(context.Background(), editor(), "createItem", map[string]any{
		"type": "project",
		"name": name,
	})
	require.True(t, res.Success, "createItem failed: %v", res.Err)
	require.Len(t, res.Delta.Created, 1)
	return res.Delta.Created[0]
}

func TestCatalogValid(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())
	assert.Contains(t, c.Names(), "createItem")
	assert.Contains(t, c.Names(), "completePlan")

	decls := c.Declarations(c.Names())
	assert.Len(t, decls, len(c.Names()))
}

func TestCreateThenSetField(t *testing.T) {
	exec, store := newTestExecutor(t)
	id := createProject(t, exec, "Roadmap")

	res := exec.Execute(context.Background(), editor(), "setProjectField1", map[string]any{
		"itemId": id,
		"value":  "x",
	})
	require.True(t, res.Success)

	snap := store.Snapshot()
	item := snap.Item(id)
	require.NotNil(t, item)
	assert.Equal(t, "x", item.Project.Field1)
	// Creation-time defaults survive the later edit.
	assert.Equal(t, "A", item.Project.Field2)
	assert.Empty(t, item.Project.Field3)
	assert.Empty(t, item.Project.Field4)
}

func TestDeleteItemIdempotence(t *testing.T) {
	exec, store := newTestExecutor(t)
	id := createProject(t, exec, "Doomed")

	res := exec.Execute(context.Background(), admin(), "deleteItem", map[string]any{"itemId": id})
	require.True(t, res.Success)
	afterFirst := store.Snapshot()
	assert.Nil(t, afterFirst.Item(id))
	// The delete confirmation stays visible via the last-action marker.
	assert.Contains(t, afterFirst.LastAction, id)

	res = exec.Execute(context.Background(), admin(), "deleteItem", map[string]any{"itemId": id})
	require.False(t, res.Success)
	assert.Equal(t, KindNotFound, res.Err.Kind)

	afterSecond := store.Snapshot()
	assert.Equal(t, afterFirst, afterSecond)
}

func TestExecuteDeniedForViewer(t *testing.T) {
	exec, store := newTestExecutor(t)
	id := createProject(t, exec, "Keep")
	before := store.Snapshot()

	res := exec.Execute(context.Background(), viewer(), "deleteItem", map[string]any{"itemId": id})
	require.False(t, res.Success)
	assert.Equal(t, KindPermissionDenied, res.Err.Kind)
	assert.Equal(t, auth.PermDeleteCanvas, res.Err.Missing)

	assert.Equal(t, before, store.Snapshot())
}

func TestExecuteUnknownActionFailsClosed(t *testing.T) {
	exec, store := newTestExecutor(t)
	before := store.Snapshot()

	res := exec.Execute(context.Background(), editor(), "formatDisk", nil)
	require.False(t, res.Success)
	assert.Equal(t, KindUnknownAction, res.Err.Kind)
	assert.Equal(t, before, store.Snapshot())
}

func TestInvalidArguments(t *testing.T) {
	exec, _ := newTestExecutor(t)
	id := createProject(t, exec, "P")

	chartRes := exec.Execute(context.Background(), editor(), "createItem", map[string]any{"type": "chart"})
	require.True(t, chartRes.Success)
	chartID := chartRes.Delta.Created[0]

	cases := []struct {
		name   string
		action string
		args   map[string]any
	}{
		{"bad item type", "createItem", map[string]any{"type": "widget"}},
		{"bad enum", "setProjectField2", map[string]any{"itemId": id, "value": "D"}},
		{"bad date", "setProjectField3", map[string]any{"itemId": id, "value": "soon"}},
		{"missing itemId", "setProjectField1", map[string]any{"value": "x"}},
		{"value out of range", "setChartField1Value", map[string]any{"itemId": chartID, "metricId": "m", "value": 200.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := exec.Execute(context.Background(), editor(), tc.action, tc.args)
			require.False(t, res.Success)
			assert.Equal(t, KindInvalidArgument, res.Err.Kind)
		})
	}
}

func TestTypeMismatchRejected(t *testing.T) {
	exec, _ := newTestExecutor(t)
	id := createProject(t, exec, "P")

	res := exec.Execute(context.Background(), editor(), "setNoteField1", map[string]any{
		"itemId": id,
		"value":  "text",
	})
	require.False(t, res.Success)
	assert.Equal(t, KindInvalidArgument, res.Err.Kind)
}

func TestChecklistLifecycle(t *testing.T) {
	exec, store := newTestExecutor(t)
	id := createProject(t, exec, "P")

	res := exec.Execute(context.Background(), editor(), "addProjectChecklistItem", map[string]any{
		"itemId": id,
		"text":   "write tests",
	})
	require.True(t, res.Success)

	entryID := store.Snapshot().Item(id).Project.Field4[0].ID

	res = exec.Execute(context.Background(), editor(), "setProjectChecklistItem", map[string]any{
		"itemId":  id,
		"entryId": entryID,
		"done":    true,
	})
	require.True(t, res.Success)
	assert.True(t, store.Snapshot().Item(id).Project.Field4[0].Done)

	res = exec.Execute(context.Background(), editor(), "removeProjectChecklistItem", map[string]any{
		"itemId":  id,
		"entryId": entryID,
	})
	require.True(t, res.Success)
	assert.Empty(t, store.Snapshot().Item(id).Project.Field4)

	res = exec.Execute(context.Background(), editor(), "removeProjectChecklistItem", map[string]any{
		"itemId":  id,
		"entryId": entryID,
	})
	require.False(t, res.Success)
	assert.Equal(t, KindNotFound, res.Err.Kind)
}

func TestChartMetrics(t *testing.T) {
	exec, store := newTestExecutor(t)

	res := exec.Execute(context.Background(), editor(), "createItem", map[string]any{"type": "chart", "name": "KPIs"})
	require.True(t, res.Success)
	chartID := res.Delta.Created[0]

	res = exec.Execute(context.Background(), editor(), "addChartField1", map[string]any{
		"itemId": chartID,
		"label":  "velocity",
		"value":  40.0,
	})
	require.True(t, res.Success)
	metricID := store.Snapshot().Item(chartID).Chart.Field1[0].ID

	res = exec.Execute(context.Background(), editor(), "setChartField1Value", map[string]any{
		"itemId":   chartID,
		"metricId": metricID,
		"value":    75.0,
	})
	require.True(t, res.Success)
	assert.Equal(t, 75.0, *store.Snapshot().Item(chartID).Chart.Field1[0].Value)

	res = exec.Execute(context.Background(), editor(), "clearChartField1Value", map[string]any{
		"itemId":   chartID,
		"metricId": metricID,
	})
	require.True(t, res.Success)
	assert.Nil(t, store.Snapshot().Item(chartID).Chart.Field1[0].Value)
}

func TestEntityTags(t *testing.T) {
	exec, store := newTestExecutor(t)

	res := exec.Execute(context.Background(), editor(), "createItem", map[string]any{"type": "entity"})
	require.True(t, res.Success)
	id := res.Delta.Created[0]

	res = exec.Execute(context.Background(), editor(), "addEntityField3", map[string]any{"itemId": id, "tag": "urgent"})
	require.True(t, res.Success)

	res = exec.Execute(context.Background(), editor(), "removeEntityField3", map[string]any{"itemId": id, "tag": "urgent"})
	require.True(t, res.Success)

	entity := store.Snapshot().Item(id).Entity
	assert.Empty(t, entity.Field3)
	// Removed tags remain selectable.
	assert.Equal(t, []string{"urgent"}, entity.Field3Options)
}

func TestPlanLifecycle(t *testing.T) {
	exec, store := newTestExecutor(t)

	res := exec.Execute(context.Background(), admin(), "setPlan", map[string]any{
		"steps": []any{"research", "build", "ship"},
	})
	require.True(t, res.Success)
	plan := store.Snapshot().Plan
	require.NotNil(t, plan)
	require.Len(t, plan.Steps, 3)

	res = exec.Execute(context.Background(), admin(), "updatePlanProgress", map[string]any{
		"stepId": plan.Steps[0].ID,
		"done":   true,
	})
	require.True(t, res.Success)
	assert.True(t, store.Snapshot().Plan.Steps[0].Done)

	// Editors may create and execute plans but not manage them.
	res = exec.Execute(context.Background(), editor(), "completePlan", nil)
	require.False(t, res.Success)
	assert.Equal(t, KindPermissionDenied, res.Err.Kind)

	res = exec.Execute(context.Background(), admin(), "completePlan", nil)
	require.True(t, res.Success)
	assert.True(t, store.Snapshot().Plan.Completed)
}

func TestSetActiveItem(t *testing.T) {
	exec, store := newTestExecutor(t)
	id := createProject(t, exec, "Focus")

	res := exec.Execute(context.Background(), viewer(), "setActiveItem", map[string]any{"itemId": id})
	require.True(t, res.Success)
	assert.Equal(t, id, store.Snapshot().ActiveItemID)
}
