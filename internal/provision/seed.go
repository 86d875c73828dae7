package provision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal/core/datamodel/rbac"
)

// permissionCatalogue is the closed set of permission codes the gate
// evaluates. Custom roles pick from these; new codes ship with the binary.
var permissionCatalogue = []struct {
	Code        string
	Description string
}{
	{"projects.view", "View projects and subprojects"},
	{"projects.create", "Create projects"},
	{"projects.edit", "Edit projects and subprojects"},
	{"projects.delete", "Delete projects"},
	{"tasks.view", "View tasks"},
	{"tasks.create", "Create tasks"},
	{"tasks.edit", "Edit tasks and change their status"},
	{"tasks.delete", "Delete tasks"},
	{"tasks.assign", "Assign tasks to members"},
	{"tasks.comment", "Comment on tasks"},
	{"time.view", "View time entries"},
	{"time.log", "Log own time and run timers"},
	{"time.manage", "Edit or delete any member's time entries"},
	{"teams.view", "View teams and their rosters"},
	{"teams.manage", "Create and manage teams"},
	{"members.view", "View the member roster"},
	{"members.manage", "Add and edit members"},
	{"members.manage_roles", "Assign and revoke member roles"},
	{"roles.manage", "Create and edit custom roles"},
	{"chat.post", "Post team chat messages"},
	{"reports.export", "Export reports"},
}

// builtinRoles maps each seeded role to its permission codes. Admin gets the
// full catalogue and is filled in at seed time.
var builtinRoles = map[string][]string{
	rbac.RoleAdmin: nil,
	rbac.RoleDeveloper: {
		"projects.view",
		"tasks.view", "tasks.create", "tasks.edit", "tasks.assign", "tasks.comment",
		"time.view", "time.log",
		"teams.view",
		"members.view",
		"chat.post",
	},
	rbac.RoleTester: {
		"projects.view",
		"tasks.view", "tasks.create", "tasks.edit", "tasks.comment",
		"time.view", "time.log",
		"teams.view",
		"members.view",
		"chat.post",
	},
	rbac.RoleCollaborator: {
		"projects.view",
		"tasks.view", "tasks.comment",
		"time.view", "time.log",
		"teams.view",
		"members.view",
		"chat.post",
	},
	rbac.RoleViewer: {
		"projects.view",
		"tasks.view",
		"time.view",
		"teams.view",
		"members.view",
	},
}

var builtinRoleDescriptions = map[string]string{
	rbac.RoleAdmin:        "Full access to every feature",
	rbac.RoleDeveloper:    "Works on tasks, logs time, posts in team chat",
	rbac.RoleTester:       "Verifies tasks and logs time",
	rbac.RoleCollaborator: "Comments and logs time, no task editing",
	rbac.RoleViewer:       "Read-only access",
}

func allPermissionCodes() []string {
	codes := make([]string, 0, len(permissionCatalogue))
	for _, p := range permissionCatalogue {
		codes = append(codes, p.Code)
	}
	return codes
}

func rolePermissionCodes(role string) []string {
	if role == rbac.RoleAdmin {
		return allPermissionCodes()
	}
	return builtinRoles[role]
}

// seedRBAC inserts the permission catalogue and builtin roles, skipping rows
// that already exist. Existing custom grants are never touched.
func seedRBAC(ctx context.Context, db *sqlx.DB) error {
	for _, p := range permissionCatalogue {
		if _, err := db.ExecContext(ctx,
			"INSERT IGNORE INTO permissions (code, description) VALUES (?, ?)",
			p.Code, p.Description); err != nil {
			return fmt.Errorf("seed permission %s: %w", p.Code, err)
		}
	}

	for name := range builtinRoles {
		if _, err := db.ExecContext(ctx,
			"INSERT IGNORE INTO roles (name, description, is_builtin) VALUES (?, ?, 1)",
			name, builtinRoleDescriptions[name]); err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}

		var roleID int64
		if err := db.GetContext(ctx, &roleID, "SELECT id FROM roles WHERE name = ?", name); err != nil {
			return fmt.Errorf("lookup role %s: %w", name, err)
		}

		for _, code := range rolePermissionCodes(name) {
			if _, err := db.ExecContext(ctx,
				`INSERT IGNORE INTO role_permissions (role_id, permission_id)
				 SELECT ?, id FROM permissions WHERE code = ?`,
				roleID, code); err != nil {
				return fmt.Errorf("grant %s to %s: %w", code, name, err)
			}
		}
	}

	return nil
}

// seedAdmin bootstraps the first account of a fresh tenant: a member, a user
// linked to it, and a tenant-wide Admin assignment. Runs only when the users
// table is empty, so an established tenant is never reseeded.
func (p *MySQLProvisioner) seedAdmin(ctx context.Context, db *sqlx.DB, domainPostfix string) error {
	var userCount int64
	if err := db.GetContext(ctx, &userCount, "SELECT COUNT(*) FROM users"); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount > 0 {
		return nil
	}

	email := "admin" + domainPostfix

	var memberID int64
	err := db.GetContext(ctx, &memberID, "SELECT id FROM members WHERE email = ?", email)
	if errors.Is(err, sql.ErrNoRows) {
		res, execErr := db.ExecContext(ctx,
			"INSERT INTO members (email, first_name, last_name) VALUES (?, 'Admin', 'User')",
			email)
		if execErr != nil {
			return fmt.Errorf("insert admin member: %w", execErr)
		}
		memberID, execErr = res.LastInsertId()
		if execErr != nil {
			return fmt.Errorf("admin member id: %w", execErr)
		}
	} else if err != nil {
		return fmt.Errorf("lookup admin member: %w", err)
	}

	hash, err := p.hasher.Hash(bootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (email, full_name, password_hash, role, is_active, member_id)
		 VALUES (?, 'Admin User', ?, 'admin', 1, ?)`,
		email, hash, memberID); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT IGNORE INTO tenant_role_assignments (member_id, role_id)
		 SELECT ?, id FROM roles WHERE name = ?`,
		memberID, rbac.RoleAdmin); err != nil {
		return fmt.Errorf("assign admin role: %w", err)
	}

	p.logger.Warn("bootstrap admin account seeded, change its password immediately",
		"email", email)
	return nil
}
