package auth

// Principal is an authenticated actor. The permission set is derived
// from the role once at construction and is immutable for the duration
// of a turn; role changes go through WithRole which recomputes it.
type Principal struct {
	ID       string
	Username string
	Role     Role

	perms map[Permission]struct{}
}

// NewPrincipal builds a principal with the permission set derived from
// the role table.
func NewPrincipal(id, username string, role Role) *Principal {
	p := &Principal{
		ID:       id,
		Username: username,
		Role:     role,
	}
	p.perms = permSet(role)
	return p
}

// Has reports whether the principal holds the given permission.
func (p *Principal) Has(perm Permission) bool {
	_, ok := p.perms[perm]
	return ok
}

// Permissions returns the principal's permission set in table order.
func (p *Principal) Permissions() []Permission {
	var out []Permission
	for _, perm := range RolePermissions(p.Role) {
		if _, ok := p.perms[perm]; ok {
			out = append(out, perm)
		}
	}
	return out
}

// WithRole returns a copy of the principal with the role changed and
// the permission set recomputed.
func (p *Principal) WithRole(role Role) *Principal {
	return NewPrincipal(p.ID, p.Username, role)
}

func permSet(role Role) map[Permission]struct{} {
	set := make(map[Permission]struct{})
	for _, perm := range RolePermissions(role) {
		set[perm] = struct{}{}
	}
	return set
}
