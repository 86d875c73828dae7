package rbac

import "time"

// Builtin role names seeded at provisioning time. Builtin roles cannot be
// deleted through the management surface.
const (
	RoleAdmin        = "Admin"
	RoleDeveloper    = "Developer"
	RoleTester       = "Tester"
	RoleCollaborator = "Collaborator"
	RoleViewer       = "Viewer"
)

type Role struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	IsBuiltin   bool      `db:"is_builtin" json:"is_builtin"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Permission struct {
	ID          int64  `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
}

type RolePermission struct {
	RoleID       int64 `db:"role_id" json:"role_id"`
	PermissionID int64 `db:"permission_id" json:"permission_id"`
}

// TenantRoleAssignment grants a role tenant-wide: it applies to every
// project plus tenant-level operations.
type TenantRoleAssignment struct {
	ID         int64     `db:"id" json:"id"`
	MemberID   int64     `db:"member_id" json:"member_id"`
	RoleID     int64     `db:"role_id" json:"role_id"`
	AssignedBy *int64    `db:"assigned_by" json:"assigned_by,omitempty"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

// ProjectRoleAssignment grants a role for a single project only.
type ProjectRoleAssignment struct {
	ID         int64     `db:"id" json:"id"`
	ProjectID  int64     `db:"project_id" json:"project_id"`
	MemberID   int64     `db:"member_id" json:"member_id"`
	RoleID     int64     `db:"role_id" json:"role_id"`
	AssignedBy *int64    `db:"assigned_by" json:"assigned_by,omitempty"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}
