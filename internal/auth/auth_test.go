package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolePermissions(t *testing.T) {
	admin := RolePermissions(RoleAdmin)
	assert.Len(t, admin, len(AllPermissions))

	editor := NewPrincipal("u1", "editor", RoleEditor)
	assert.True(t, editor.Has(PermWriteCanvas))
	assert.False(t, editor.Has(PermDeleteCanvas))
	assert.True(t, editor.Has(PermEditChart))
	assert.True(t, editor.Has(PermCreatePlan))
	assert.False(t, editor.Has(PermManagePlan))
	assert.False(t, editor.Has(PermAdmin))
	assert.False(t, editor.Has(PermManageUsers))

	for _, role := range []Role{RoleViewer, RoleGuest} {
		p := NewPrincipal("u2", string(role), role)
		assert.True(t, p.Has(PermReadCanvas))
		assert.False(t, p.Has(PermWriteCanvas))
		assert.Equal(t, []Permission{PermReadCanvas}, p.Permissions())
	}
}

func TestRolePermissionsUnknownRole(t *testing.T) {
	assert.Nil(t, RolePermissions(Role("superuser")))
	p := NewPrincipal("u3", "x", Role("superuser"))
	assert.False(t, p.Has(PermReadCanvas))
}

func TestWithRoleRecomputes(t *testing.T) {
	p := NewPrincipal("u1", "alice", RoleViewer)
	assert.False(t, p.Has(PermWriteCanvas))

	promoted := p.WithRole(RoleEditor)
	assert.True(t, promoted.Has(PermWriteCanvas))
	// Original principal is unchanged.
	assert.False(t, p.Has(PermWriteCanvas))
}

func TestMemoryRepositoryAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, repo.SeedDefaults())

	p, err := repo.Authenticate("editor", "editor123")
	require.NoError(t, err)
	assert.Equal(t, RoleEditor, p.Role)
	assert.True(t, p.Has(PermWriteCanvas))

	_, err = repo.Authenticate("editor", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = repo.Authenticate("nobody", "editor123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMemoryRepositoryCreate(t *testing.T) {
	repo := NewMemoryRepository()

	u, err := repo.Create("alice", "alice@example.com", "s3cret", RoleEditor)
	require.NoError(t, err)
	assert.True(t, u.Active)
	assert.NotEqual(t, "s3cret", string(u.PasswordHash))

	_, err = repo.Create("alice", "alice@example.com", "other", RoleEditor)
	assert.Error(t, err)

	_, err = repo.Create("bob", "bob@example.com", "pw", Role("fake"))
	assert.Error(t, err)
}
