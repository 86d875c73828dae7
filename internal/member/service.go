package member

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	memberDatamodel "github.com/maviontech/project-management/internal/core/datamodel/member"
	"github.com/maviontech/project-management/internal/tenant"
)

type Repository interface {
	List(ctx context.Context, db *sqlx.DB) ([]memberDatamodel.Member, error)
	Get(ctx context.Context, db *sqlx.DB, id int64) (*memberDatamodel.Member, error)
	GetByEmail(ctx context.Context, db *sqlx.DB, email string) (*memberDatamodel.Member, error)
	Create(ctx context.Context, db *sqlx.DB, m *memberDatamodel.Member) (int64, error)
	Update(ctx context.Context, db *sqlx.DB, m *memberDatamodel.Member) error
	Delete(ctx context.Context, db *sqlx.DB, id int64) error
}

// Service manages the tenant roster. Members are assignable people; whether
// they can log in is a separate concern handled by the users table.
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

func (s *Service) ListMembers(ctx context.Context, p *internal.Principal) ([]memberDatamodel.Member, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	members, err := s.repo.List(ctx, db)
	if err != nil {
		s.logger.Error("failed to list members", "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return members, nil
}

func (s *Service) GetMember(ctx context.Context, p *internal.Principal, memberID int64) (*memberDatamodel.Member, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return s.repo.Get(ctx, db, memberID)
}

func (s *Service) CreateMember(ctx context.Context, p *internal.Principal, dto MemberDTO) (*memberDatamodel.Member, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if existing, err := s.repo.GetByEmail(ctx, db, dto.Email); err == nil && existing != nil {
		return nil, internal.NewConflictError("a member with this email already exists", internal.ErrCodeValidationFailed)
	}

	m := dto.toModel()
	m.CreatedBy = &p.MemberID

	id, err := s.repo.Create(ctx, db, m)
	if err != nil {
		s.logger.Error("failed to create member", "email", dto.Email, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	m.ID = id

	s.logger.Info("member created", "member_id", id, "created_by", p.MemberID)
	return m, nil
}

func (s *Service) UpdateMember(ctx context.Context, p *internal.Principal, memberID int64, dto MemberDTO) (*memberDatamodel.Member, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	existing, err := s.repo.Get(ctx, db, memberID)
	if err != nil {
		return nil, err
	}

	updated := dto.toModel()
	updated.ID = existing.ID
	updated.CreatedBy = existing.CreatedBy

	if err := s.repo.Update(ctx, db, updated); err != nil {
		s.logger.Error("failed to update member", "member_id", memberID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return s.repo.Get(ctx, db, memberID)
}

func (s *Service) DeleteMember(ctx context.Context, p *internal.Principal, memberID int64) error {
	if memberID == p.MemberID {
		return internal.NewConflictError("cannot remove your own member record", internal.ErrCodeValidationFailed)
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := s.repo.Get(ctx, db, memberID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, db, memberID); err != nil {
		s.logger.Error("failed to delete member", "member_id", memberID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logger.Info("member deleted", "member_id", memberID, "deleted_by", p.MemberID)
	return nil
}
