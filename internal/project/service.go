package project

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	projectDatamodel "github.com/maviontech/project-management/internal/core/datamodel/project"
	"github.com/maviontech/project-management/internal/tenant"
)

type Repository interface {
	List(ctx context.Context, db *sqlx.DB) ([]projectDatamodel.Project, error)
	Get(ctx context.Context, db *sqlx.DB, id int64) (*projectDatamodel.Project, error)
	Create(ctx context.Context, db *sqlx.DB, p *projectDatamodel.Project) (int64, error)
	Update(ctx context.Context, db *sqlx.DB, p *projectDatamodel.Project) error
	Delete(ctx context.Context, db *sqlx.DB, id int64) error
	ListSubprojects(ctx context.Context, db *sqlx.DB, projectID int64) ([]projectDatamodel.Subproject, error)
	CreateSubproject(ctx context.Context, db *sqlx.DB, sp *projectDatamodel.Subproject) (int64, error)
	DeleteSubproject(ctx context.Context, db *sqlx.DB, projectID, subprojectID int64) error
	LogActivity(ctx context.Context, db *sqlx.DB, entityType string, entityID int64, action string, performedBy *int64) error
}

type Service struct {
	connector tenant.Connector
	repo      Repository
	logger    *slog.Logger
}

func NewService(connector tenant.Connector, repo Repository, logger *slog.Logger) *Service {
	return &Service{connector: connector, repo: repo, logger: logger}
}

func (s *Service) open(ctx context.Context, p *internal.Principal) (*sqlx.DB, error) {
	return s.connector.Open(ctx, &p.Tenant)
}

func (s *Service) logActivity(ctx context.Context, db *sqlx.DB, entityID int64, action string, performedBy int64) {
	if err := s.repo.LogActivity(ctx, db, "project", entityID, action, &performedBy); err != nil {
		s.logger.Warn("activity entry not recorded", "entity_id", entityID, "action", action, "error", err)
	}
}

func (s *Service) ListProjects(ctx context.Context, p *internal.Principal) ([]projectDatamodel.Project, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	projects, err := s.repo.List(ctx, db)
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return projects, nil
}

func (s *Service) GetProject(ctx context.Context, p *internal.Principal, projectID int64) (*projectDatamodel.Project, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return s.repo.Get(ctx, db, projectID)
}

func (s *Service) CreateProject(ctx context.Context, p *internal.Principal, dto ProjectDTO) (*projectDatamodel.Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	proj := dto.toModel()
	proj.CreatedBy = &p.MemberID

	id, err := s.repo.Create(ctx, db, proj)
	if err != nil {
		s.logger.Error("failed to create project", "name", dto.Name, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logActivity(ctx, db, id, "created", p.MemberID)
	s.logger.Info("project created", "project_id", id, "created_by", p.MemberID)
	return s.repo.Get(ctx, db, id)
}

func (s *Service) UpdateProject(ctx context.Context, p *internal.Principal, projectID int64, dto ProjectDTO) (*projectDatamodel.Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	existing, err := s.repo.Get(ctx, db, projectID)
	if err != nil {
		return nil, err
	}

	updated := dto.toModel()
	updated.ID = existing.ID
	updated.CreatedBy = existing.CreatedBy

	if err := s.repo.Update(ctx, db, updated); err != nil {
		s.logger.Error("failed to update project", "project_id", projectID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logActivity(ctx, db, projectID, "updated", p.MemberID)
	return s.repo.Get(ctx, db, projectID)
}

func (s *Service) DeleteProject(ctx context.Context, p *internal.Principal, projectID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := s.repo.Get(ctx, db, projectID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, db, projectID); err != nil {
		s.logger.Error("failed to delete project", "project_id", projectID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logger.Info("project deleted", "project_id", projectID, "deleted_by", p.MemberID)
	return nil
}

func (s *Service) ListSubprojects(ctx context.Context, p *internal.Principal, projectID int64) ([]projectDatamodel.Subproject, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := s.repo.Get(ctx, db, projectID); err != nil {
		return nil, err
	}

	subs, err := s.repo.ListSubprojects(ctx, db, projectID)
	if err != nil {
		s.logger.Error("failed to list subprojects", "project_id", projectID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return subs, nil
}

func (s *Service) CreateSubproject(ctx context.Context, p *internal.Principal, projectID int64, dto SubprojectDTO) (*projectDatamodel.Subproject, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := s.repo.Get(ctx, db, projectID); err != nil {
		return nil, err
	}

	sp := &projectDatamodel.Subproject{
		ProjectID:   projectID,
		Name:        dto.Name,
		Description: dto.Description,
	}
	id, err := s.repo.CreateSubproject(ctx, db, sp)
	if err != nil {
		s.logger.Error("failed to create subproject", "project_id", projectID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	sp.ID = id
	return sp, nil
}

func (s *Service) DeleteSubproject(ctx context.Context, p *internal.Principal, projectID, subprojectID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := s.repo.DeleteSubproject(ctx, db, projectID, subprojectID); err != nil {
		s.logger.Error("failed to delete subproject",
			"project_id", projectID, "subproject_id", subprojectID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}
