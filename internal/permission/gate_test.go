package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"canvassist/internal/auth"
)

func testRegistry() *Registry {
	r := NewRegistry()
	r.Register("createItem", auth.PermWriteCanvas)
	r.Register("deleteItem", auth.PermDeleteCanvas)
	r.Register("setProjectField1", auth.PermEditProject)
	r.Register("setActiveItem", auth.PermReadCanvas)
	r.Register("ping", "")
	return r
}

func TestRegistryRequired(t *testing.T) {
	r := testRegistry()

	perm, known := r.Required("createItem")
	assert.True(t, known)
	assert.Equal(t, auth.PermWriteCanvas, perm)

	perm, known = r.Required("ping")
	assert.True(t, known)
	assert.Equal(t, auth.Permission(""), perm)

	_, known = r.Required("dropEverything")
	assert.False(t, known)
}

func TestGateCheck(t *testing.T) {
	gate := NewGate(testRegistry())
	editor := auth.NewPrincipal("u1", "editor", auth.RoleEditor)
	viewer := auth.NewPrincipal("u2", "viewer", auth.RoleViewer)

	assert.Nil(t, gate.Check(editor, "createItem"))
	assert.Nil(t, gate.Check(viewer, "setActiveItem"))
	assert.Nil(t, gate.Check(viewer, "ping"))

	d := gate.Check(viewer, "createItem")
	if assert.NotNil(t, d) {
		assert.Equal(t, auth.PermWriteCanvas, d.Missing)
		assert.False(t, d.Unknown)
		assert.Contains(t, d.Reason(), "write:canvas")
	}
}

func TestGateFailsClosedOnUnknownAction(t *testing.T) {
	gate := NewGate(testRegistry())
	admin := auth.NewPrincipal("u1", "admin", auth.RoleAdmin)

	// Even an admin is denied for an unregistered action id.
	assert.False(t, gate.IsAllowed(admin, "dropEverything"))
	d := gate.Check(admin, "dropEverything")
	if assert.NotNil(t, d) {
		assert.True(t, d.Unknown)
	}
}

func TestFilterCatalogPreservesOrder(t *testing.T) {
	gate := NewGate(testRegistry())
	viewer := auth.NewPrincipal("u2", "viewer", auth.RoleViewer)
	editor := auth.NewPrincipal("u1", "editor", auth.RoleEditor)
	admin := auth.NewPrincipal("u0", "admin", auth.RoleAdmin)

	ids := []string{"createItem", "setActiveItem", "deleteItem", "ping", "setProjectField1"}

	assert.Equal(t, []string{"setActiveItem", "ping"}, gate.FilterCatalog(viewer, ids))
	assert.Equal(t, []string{"createItem", "setActiveItem", "ping", "setProjectField1"}, gate.FilterCatalog(editor, ids))
	assert.Equal(t, ids, gate.FilterCatalog(admin, ids))
}

func TestViewerCatalogOnlyReadActions(t *testing.T) {
	r := testRegistry()
	gate := NewGate(r)
	viewer := auth.NewPrincipal("u2", "viewer", auth.RoleViewer)

	for _, id := range gate.FilterCatalog(viewer, []string{"createItem", "deleteItem", "setProjectField1", "setActiveItem", "ping"}) {
		required, known := r.Required(id)
		assert.True(t, known)
		if required != "" {
			assert.Equal(t, auth.PermReadCanvas, required)
		}
	}
}
