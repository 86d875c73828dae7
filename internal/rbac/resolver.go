package rbac

import (
	"context"
	"log/slog"
	"sort"

	"github.com/jmoiron/sqlx"
)

// Resolver computes the effective permission set for a member. Evaluation is
// the union of tenant-wide role assignments and, when a project scope is
// given, project-scoped assignments for that project. Results are never
// cached: a revoked assignment stops granting on the very next call.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// EffectiveRoleIDs returns the deduplicated role ids granted to a member,
// tenant-wide plus project-scoped when projectID is non-nil.
//
// A failing query on either source contributes zero roles from that source
// instead of propagating; historical tenants with missing assignment tables
// lose permissions gracefully rather than crashing the request. Degradation
// is deny-biased by construction: fewer roles can only mean fewer grants.
func (r *Resolver) EffectiveRoleIDs(ctx context.Context, db *sqlx.DB, memberID int64, projectID *int64) []int64 {
	roleIDs := make(map[int64]struct{})

	var tenantWide []int64
	err := db.SelectContext(ctx, &tenantWide,
		"SELECT role_id FROM tenant_role_assignments WHERE member_id = ?", memberID)
	if err != nil {
		r.logger.Warn("tenant role lookup degraded to empty", "member_id", memberID, "error", err)
	}
	for _, id := range tenantWide {
		roleIDs[id] = struct{}{}
	}

	if projectID != nil {
		var projectScoped []int64
		err := db.SelectContext(ctx, &projectScoped,
			"SELECT role_id FROM project_role_assignments WHERE member_id = ? AND project_id = ?",
			memberID, *projectID)
		if err != nil {
			r.logger.Warn("project role lookup degraded to empty",
				"member_id", memberID, "project_id", *projectID, "error", err)
		}
		for _, id := range projectScoped {
			roleIDs[id] = struct{}{}
		}
	}

	out := make([]int64, 0, len(roleIDs))
	for id := range roleIDs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PermissionsForRoles returns the union of permission codes granted by the
// given roles.
func (r *Resolver) PermissionsForRoles(ctx context.Context, db *sqlx.DB, roleIDs []int64) (map[string]struct{}, error) {
	perms := make(map[string]struct{})
	if len(roleIDs) == 0 {
		return perms, nil
	}

	query, args, err := sqlx.In(
		"SELECT p.code FROM permissions p JOIN role_permissions rp ON p.id = rp.permission_id WHERE rp.role_id IN (?)",
		roleIDs)
	if err != nil {
		return nil, err
	}

	var codes []string
	if err := db.SelectContext(ctx, &codes, db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, code := range codes {
		perms[code] = struct{}{}
	}
	return perms, nil
}

// HasPermission reports whether the member holds the permission code in the
// given scope. A member with zero role assignments holds nothing; resolution
// failures also resolve to false, never to default-allow.
func (r *Resolver) HasPermission(ctx context.Context, db *sqlx.DB, memberID int64, projectID *int64, code string) bool {
	roleIDs := r.EffectiveRoleIDs(ctx, db, memberID, projectID)
	if len(roleIDs) == 0 {
		return false
	}

	perms, err := r.PermissionsForRoles(ctx, db, roleIDs)
	if err != nil {
		r.logger.Warn("permission lookup degraded to empty", "member_id", memberID, "error", err)
		return false
	}

	_, ok := perms[code]
	return ok
}

// EffectivePermissions returns the sorted permission codes a member holds in
// the given scope, for display on profile and role pages.
func (r *Resolver) EffectivePermissions(ctx context.Context, db *sqlx.DB, memberID int64, projectID *int64) []string {
	roleIDs := r.EffectiveRoleIDs(ctx, db, memberID, projectID)
	if len(roleIDs) == 0 {
		return []string{}
	}

	perms, err := r.PermissionsForRoles(ctx, db, roleIDs)
	if err != nil {
		r.logger.Warn("permission lookup degraded to empty", "member_id", memberID, "error", err)
		return []string{}
	}

	out := make([]string, 0, len(perms))
	for code := range perms {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
