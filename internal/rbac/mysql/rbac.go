package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	rbacDatamodel "github.com/maviontech/project-management/internal/core/datamodel/rbac"
)

// Repository implements rbac.Repository against a tenant database handle
// supplied per call.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) ListRoles(ctx context.Context, db *sqlx.DB) ([]rbacDatamodel.Role, error) {
	var roles []rbacDatamodel.Role
	err := db.SelectContext(ctx, &roles,
		"SELECT id, name, description, is_builtin, created_at FROM roles ORDER BY is_builtin DESC, name ASC")
	return roles, err
}

func (r *Repository) GetRole(ctx context.Context, db *sqlx.DB, id int64) (*rbacDatamodel.Role, error) {
	var role rbacDatamodel.Role
	err := db.GetContext(ctx, &role,
		"SELECT id, name, description, is_builtin, created_at FROM roles WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *Repository) CreateRole(ctx context.Context, db *sqlx.DB, name, description string) (int64, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO roles (name, description, is_builtin) VALUES (?, ?, 0)", name, description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) UpdateRole(ctx context.Context, db *sqlx.DB, id int64, name, description string) error {
	_, err := db.ExecContext(ctx,
		"UPDATE roles SET name = ?, description = ? WHERE id = ?", name, description, id)
	return err
}

// DeleteRole removes the role together with its grants and assignments in
// one transaction so a dropped client cannot leave partial state.
func (r *Repository) DeleteRole(ctx context.Context, db *sqlx.DB, id int64) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM role_permissions WHERE role_id = ?",
		"DELETE FROM tenant_role_assignments WHERE role_id = ?",
		"DELETE FROM project_role_assignments WHERE role_id = ?",
		"DELETE FROM roles WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repository) ListPermissions(ctx context.Context, db *sqlx.DB) ([]rbacDatamodel.Permission, error) {
	var perms []rbacDatamodel.Permission
	err := db.SelectContext(ctx, &perms,
		"SELECT id, code, description FROM permissions ORDER BY code")
	return perms, err
}

func (r *Repository) RolePermissionIDs(ctx context.Context, db *sqlx.DB, roleID int64) ([]int64, error) {
	var ids []int64
	err := db.SelectContext(ctx, &ids,
		"SELECT permission_id FROM role_permissions WHERE role_id = ?", roleID)
	return ids, err
}

func (r *Repository) ReplaceRolePermissions(ctx context.Context, db *sqlx.DB, roleID int64, permissionIDs []int64) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM role_permissions WHERE role_id = ?", roleID); err != nil {
		return err
	}
	for _, permID := range permissionIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO role_permissions (role_id, permission_id) VALUES (?, ?)", roleID, permID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repository) AssignTenantRole(ctx context.Context, db *sqlx.DB, memberID, roleID int64, assignedBy *int64) error {
	_, err := db.ExecContext(ctx,
		"INSERT IGNORE INTO tenant_role_assignments (member_id, role_id, assigned_by, assigned_at) VALUES (?, ?, ?, NOW())",
		memberID, roleID, assignedBy)
	return err
}

func (r *Repository) RevokeTenantRole(ctx context.Context, db *sqlx.DB, memberID, roleID int64) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM tenant_role_assignments WHERE member_id = ? AND role_id = ?", memberID, roleID)
	return err
}

func (r *Repository) AssignProjectRole(ctx context.Context, db *sqlx.DB, projectID, memberID, roleID int64, assignedBy *int64) error {
	_, err := db.ExecContext(ctx,
		"INSERT IGNORE INTO project_role_assignments (project_id, member_id, role_id, assigned_by, assigned_at) VALUES (?, ?, ?, ?, NOW())",
		projectID, memberID, roleID, assignedBy)
	return err
}

func (r *Repository) RevokeProjectRole(ctx context.Context, db *sqlx.DB, projectID, memberID, roleID int64) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM project_role_assignments WHERE project_id = ? AND member_id = ? AND role_id = ?",
		projectID, memberID, roleID)
	return err
}
