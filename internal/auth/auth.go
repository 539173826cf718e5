// Package auth defines principals, roles, and the fixed role to
// permission-set table used by the permission gate.
package auth

// Permission is a fine-grained capability string.
type Permission string

const (
	PermReadCanvas   Permission = "read:canvas"
	PermWriteCanvas  Permission = "write:canvas"
	PermDeleteCanvas Permission = "delete:canvas"

	PermCreateProject Permission = "create:project"
	PermEditProject   Permission = "edit:project"
	PermDeleteProject Permission = "delete:project"

	PermCreateEntity Permission = "create:entity"
	PermEditEntity   Permission = "edit:entity"
	PermDeleteEntity Permission = "delete:entity"

	PermCreateNote Permission = "create:note"
	PermEditNote   Permission = "edit:note"
	PermDeleteNote Permission = "delete:note"

	PermCreateChart Permission = "create:chart"
	PermEditChart   Permission = "edit:chart"
	PermDeleteChart Permission = "delete:chart"

	PermCreatePlan  Permission = "create:plan"
	PermExecutePlan Permission = "execute:plan"
	PermManagePlan  Permission = "manage:plan"

	PermAdmin       Permission = "admin"
	PermManageUsers Permission = "manage:users"
)

// AllPermissions lists every permission in the closed enumeration.
var AllPermissions = []Permission{
	PermReadCanvas, PermWriteCanvas, PermDeleteCanvas,
	PermCreateProject, PermEditProject, PermDeleteProject,
	PermCreateEntity, PermEditEntity, PermDeleteEntity,
	PermCreateNote, PermEditNote, PermDeleteNote,
	PermCreateChart, PermEditChart, PermDeleteChart,
	PermCreatePlan, PermExecutePlan, PermManagePlan,
	PermAdmin, PermManageUsers,
}

// Role is a named level of access.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
	RoleGuest  Role = "guest"
)

// rolePermissions is fixed at startup and never mutated.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: AllPermissions,
	RoleEditor: {
		PermReadCanvas, PermWriteCanvas,
		PermCreateProject, PermEditProject,
		PermCreateEntity, PermEditEntity,
		PermCreateNote, PermEditNote,
		PermCreateChart, PermEditChart,
		PermCreatePlan, PermExecutePlan,
	},
	RoleViewer: {PermReadCanvas},
	RoleGuest:  {PermReadCanvas},
}

// RolePermissions returns the permission set for a role. Unknown roles
// get no permissions.
func RolePermissions(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// ValidRole reports whether role is one of the closed enumeration.
func ValidRole(role Role) bool {
	_, ok := rolePermissions[role]
	return ok
}
