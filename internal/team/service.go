package team

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	teamDatamodel "github.com/maviontech/project-management/internal/core/datamodel/team"
	"github.com/maviontech/project-management/internal/tenant"
)

type Repository interface {
	List(ctx context.Context, db *sqlx.DB) ([]teamDatamodel.Team, error)
	Get(ctx context.Context, db *sqlx.DB, id int64) (*teamDatamodel.Team, error)
	GetBySlug(ctx context.Context, db *sqlx.DB, slug string) (*teamDatamodel.Team, error)
	Create(ctx context.Context, db *sqlx.DB, t *teamDatamodel.Team) (int64, error)
	Update(ctx context.Context, db *sqlx.DB, t *teamDatamodel.Team) error
	Delete(ctx context.Context, db *sqlx.DB, id int64) error
	ListMemberships(ctx context.Context, db *sqlx.DB, teamID int64) ([]teamDatamodel.Membership, error)
	AddMembership(ctx context.Context, db *sqlx.DB, m *teamDatamodel.Membership) error
	RemoveMembership(ctx context.Context, db *sqlx.DB, teamID, memberID int64) error
	IsTeamMember(ctx context.Context, db *sqlx.DB, teamID, memberID int64) (bool, error)
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

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL slug from a team name.
func Slugify(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func (s *Service) ListTeams(ctx context.Context, p *internal.Principal) ([]teamDatamodel.Team, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	teams, err := s.repo.List(ctx, db)
	if err != nil {
		s.logger.Error("failed to list teams", "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return teams, nil
}

func (s *Service) GetTeam(ctx context.Context, p *internal.Principal, teamID int64) (*teamDatamodel.Team, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return s.repo.Get(ctx, db, teamID)
}

func (s *Service) CreateTeam(ctx context.Context, p *internal.Principal, dto TeamDTO) (*teamDatamodel.Team, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	slug := Slugify(dto.Name)
	if existing, err := s.repo.GetBySlug(ctx, db, slug); err == nil && existing != nil {
		return nil, internal.NewConflictError("a team with this name already exists", internal.ErrCodeValidationFailed)
	}

	t := &teamDatamodel.Team{
		Name:        dto.Name,
		Slug:        slug,
		Description: dto.Description,
		TeamLeadID:  dto.TeamLeadID,
		CreatedBy:   &p.MemberID,
	}
	id, err := s.repo.Create(ctx, db, t)
	if err != nil {
		s.logger.Error("failed to create team", "name", dto.Name, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	t.ID = id

	s.logger.Info("team created", "team_id", id, "slug", slug, "created_by", p.MemberID)
	return t, nil
}

func (s *Service) UpdateTeam(ctx context.Context, p *internal.Principal, teamID int64, dto TeamDTO) (*teamDatamodel.Team, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	existing, err := s.repo.Get(ctx, db, teamID)
	if err != nil {
		return nil, err
	}

	existing.Name = dto.Name
	existing.Slug = Slugify(dto.Name)
	existing.Description = dto.Description
	existing.TeamLeadID = dto.TeamLeadID

	if err := s.repo.Update(ctx, db, existing); err != nil {
		s.logger.Error("failed to update team", "team_id", teamID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return existing, nil
}

func (s *Service) DeleteTeam(ctx context.Context, p *internal.Principal, teamID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := s.repo.Get(ctx, db, teamID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, db, teamID); err != nil {
		s.logger.Error("failed to delete team", "team_id", teamID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}

func (s *Service) ListMemberships(ctx context.Context, p *internal.Principal, teamID int64) ([]teamDatamodel.Membership, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := s.repo.Get(ctx, db, teamID); err != nil {
		return nil, err
	}

	memberships, err := s.repo.ListMemberships(ctx, db, teamID)
	if err != nil {
		s.logger.Error("failed to list team memberships", "team_id", teamID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return memberships, nil
}

func (s *Service) AddMember(ctx context.Context, p *internal.Principal, teamID int64, dto MembershipDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := s.repo.Get(ctx, db, teamID); err != nil {
		return err
	}

	m := &teamDatamodel.Membership{
		TeamID:   teamID,
		MemberID: dto.MemberID,
		TeamRole: dto.TeamRole,
		AddedBy:  &p.MemberID,
	}
	if m.TeamRole == "" {
		m.TeamRole = "member"
	}
	if err := s.repo.AddMembership(ctx, db, m); err != nil {
		s.logger.Error("failed to add team member", "team_id", teamID, "member_id", dto.MemberID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}

func (s *Service) RemoveMember(ctx context.Context, p *internal.Principal, teamID, memberID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := s.repo.RemoveMembership(ctx, db, teamID, memberID); err != nil {
		s.logger.Error("failed to remove team member", "team_id", teamID, "member_id", memberID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}
