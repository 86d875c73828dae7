package rbac

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	rbacDatamodel "github.com/maviontech/project-management/internal/core/datamodel/rbac"
	"github.com/maviontech/project-management/internal/tenant"
)

// Repository is the data access surface for role and assignment management
// inside one tenant database.
type Repository interface {
	ListRoles(ctx context.Context, db *sqlx.DB) ([]rbacDatamodel.Role, error)
	GetRole(ctx context.Context, db *sqlx.DB, id int64) (*rbacDatamodel.Role, error)
	CreateRole(ctx context.Context, db *sqlx.DB, name, description string) (int64, error)
	UpdateRole(ctx context.Context, db *sqlx.DB, id int64, name, description string) error
	DeleteRole(ctx context.Context, db *sqlx.DB, id int64) error
	ListPermissions(ctx context.Context, db *sqlx.DB) ([]rbacDatamodel.Permission, error)
	RolePermissionIDs(ctx context.Context, db *sqlx.DB, roleID int64) ([]int64, error)
	ReplaceRolePermissions(ctx context.Context, db *sqlx.DB, roleID int64, permissionIDs []int64) error
	AssignTenantRole(ctx context.Context, db *sqlx.DB, memberID, roleID int64, assignedBy *int64) error
	RevokeTenantRole(ctx context.Context, db *sqlx.DB, memberID, roleID int64) error
	AssignProjectRole(ctx context.Context, db *sqlx.DB, projectID, memberID, roleID int64, assignedBy *int64) error
	RevokeProjectRole(ctx context.Context, db *sqlx.DB, projectID, memberID, roleID int64) error
}

// Service is the role/permission management surface. Every method opens its
// own tenant connection from the caller's principal and releases it before
// returning.
type Service struct {
	connector tenant.Connector
	repo      Repository
	resolver  *Resolver
	logger    *slog.Logger
}

func NewService(connector tenant.Connector, repo Repository, resolver *Resolver, logger *slog.Logger) *Service {
	return &Service{
		connector: connector,
		repo:      repo,
		resolver:  resolver,
		logger:    logger,
	}
}

func (s *Service) open(ctx context.Context, p *internal.Principal) (*sqlx.DB, error) {
	return s.connector.Open(ctx, &p.Tenant)
}

func (s *Service) ListRoles(ctx context.Context, p *internal.Principal) ([]rbacDatamodel.Role, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	roles, err := s.repo.ListRoles(ctx, db)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return roles, nil
}

func (s *Service) ListPermissions(ctx context.Context, p *internal.Principal) ([]rbacDatamodel.Permission, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	perms, err := s.repo.ListPermissions(ctx, db)
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return perms, nil
}

func (s *Service) CreateRole(ctx context.Context, p *internal.Principal, dto RoleDTO) (*rbacDatamodel.Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	id, err := s.repo.CreateRole(ctx, db, dto.Name, dto.Description)
	if err != nil {
		s.logger.Error("failed to create role", "name", dto.Name, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logger.Info("role created", "role_id", id, "name", dto.Name, "created_by", p.MemberID)
	return s.repo.GetRole(ctx, db, id)
}

func (s *Service) UpdateRole(ctx context.Context, p *internal.Principal, roleID int64, dto RoleDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := s.repo.GetRole(ctx, db, roleID); err != nil {
		return err
	}
	if err := s.repo.UpdateRole(ctx, db, roleID, dto.Name, dto.Description); err != nil {
		s.logger.Error("failed to update role", "role_id", roleID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}

// DeleteRole removes a custom role. Builtin roles are undeletable.
func (s *Service) DeleteRole(ctx context.Context, p *internal.Principal, roleID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	role, err := s.repo.GetRole(ctx, db, roleID)
	if err != nil {
		return err
	}
	if role.IsBuiltin {
		return internal.ErrRoleBuiltin
	}

	if err := s.repo.DeleteRole(ctx, db, roleID); err != nil {
		s.logger.Error("failed to delete role", "role_id", roleID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logger.Info("role deleted", "role_id", roleID, "name", role.Name, "deleted_by", p.MemberID)
	return nil
}

// SetRolePermissions replaces a role's permission grants in one transaction.
func (s *Service) SetRolePermissions(ctx context.Context, p *internal.Principal, roleID int64, permissionIDs []int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := s.repo.GetRole(ctx, db, roleID); err != nil {
		return err
	}
	if err := s.repo.ReplaceRolePermissions(ctx, db, roleID, permissionIDs); err != nil {
		s.logger.Error("failed to set role permissions", "role_id", roleID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}

func (s *Service) AssignTenantRole(ctx context.Context, p *internal.Principal, memberID, roleID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := s.repo.AssignTenantRole(ctx, db, memberID, roleID, &p.MemberID); err != nil {
		s.logger.Error("failed to assign tenant role", "member_id", memberID, "role_id", roleID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	s.logger.Info("tenant role assigned", "member_id", memberID, "role_id", roleID, "assigned_by", p.MemberID)
	return nil
}

func (s *Service) RevokeTenantRole(ctx context.Context, p *internal.Principal, memberID, roleID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := s.repo.RevokeTenantRole(ctx, db, memberID, roleID); err != nil {
		s.logger.Error("failed to revoke tenant role", "member_id", memberID, "role_id", roleID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}

func (s *Service) AssignProjectRole(ctx context.Context, p *internal.Principal, projectID, memberID, roleID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := s.repo.AssignProjectRole(ctx, db, projectID, memberID, roleID, &p.MemberID); err != nil {
		s.logger.Error("failed to assign project role",
			"project_id", projectID, "member_id", memberID, "role_id", roleID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}

func (s *Service) RevokeProjectRole(ctx context.Context, p *internal.Principal, projectID, memberID, roleID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := s.repo.RevokeProjectRole(ctx, db, projectID, memberID, roleID); err != nil {
		s.logger.Error("failed to revoke project role",
			"project_id", projectID, "member_id", memberID, "role_id", roleID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}

// EffectivePermissions reports the caller's own permission set for a scope.
func (s *Service) EffectivePermissions(ctx context.Context, p *internal.Principal, projectID *int64) ([]string, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return s.resolver.EffectivePermissions(ctx, db, p.MemberID, projectID), nil
}
