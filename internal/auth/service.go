package auth

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	memberDatamodel "github.com/maviontech/project-management/internal/core/datamodel/member"
	tenantDatamodel "github.com/maviontech/project-management/internal/core/datamodel/tenant"
	"github.com/maviontech/project-management/internal/password"
	"github.com/maviontech/project-management/internal/session"
	"github.com/maviontech/project-management/internal/tenant"
)

// TenantResolver maps an email to its tenant connection config.
type TenantResolver interface {
	ResolveByEmail(ctx context.Context, email string) (*tenantDatamodel.Config, error)
}

// UserRepository is the login-principal access surface inside one tenant DB.
type UserRepository interface {
	GetByEmail(ctx context.Context, db *sqlx.DB, email string) (*memberDatamodel.User, error)
	UpdatePasswordHash(ctx context.Context, db *sqlx.DB, userID int64, hash string) error
	UpdatePasswordHashByEmail(ctx context.Context, db *sqlx.DB, email, hash string) error
}

// dummyHash keeps response timing uniform when the account does not exist:
// the same bcrypt comparison runs either way.
const dummyHash = "$2b$12$C6UzMDM.H6dfI/f/IKcEeO7ZBpE9Nq1Qy1jD3S5lXxGh3wN0y0q1u"

// Service implements the login flow: resolve the tenant from the email
// domain, open that tenant's database, verify the password, upgrade legacy
// hashes on the fly, and issue a session.
type Service struct {
	tenants   TenantResolver
	connector tenant.Connector
	users     UserRepository
	hasher    *password.Hasher
	sessions  session.Store
	reset     *ResetTokenSigner
	mailer    Mailer
	logger    *slog.Logger
}

func NewService(
	tenants TenantResolver,
	connector tenant.Connector,
	users UserRepository,
	hasher *password.Hasher,
	sessions session.Store,
	reset *ResetTokenSigner,
	mailer Mailer,
	logger *slog.Logger,
) *Service {
	return &Service{
		tenants:   tenants,
		connector: connector,
		users:     users,
		hasher:    hasher,
		sessions:  sessions,
		reset:     reset,
		mailer:    mailer,
		logger:    logger,
	}
}

// Login authenticates a user and returns the session token plus the resolved
// principal. The response never distinguishes "no such user" from "wrong
// password".
func (s *Service) Login(ctx context.Context, dto LoginDTO) (string, *internal.Principal, error) {
	if err := dto.Validate(); err != nil {
		return "", nil, err
	}

	cfg, err := s.tenants.ResolveByEmail(ctx, dto.Email)
	if err != nil {
		return "", nil, err
	}

	db, err := s.connector.Open(ctx, cfg)
	if err != nil {
		return "", nil, err
	}
	defer db.Close()

	user, err := s.users.GetByEmail(ctx, db, dto.Email)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeInvalidCredentials {
			s.hasher.Verify(dto.Password, dummyHash)
			return "", nil, internal.ErrInvalidCredentials
		}
		s.logger.Error("user lookup failed", "db_name", cfg.Name, "error", err)
		return "", nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	matched, needsUpgrade := s.hasher.Verify(dto.Password, user.PasswordHash)
	if !matched {
		return "", nil, internal.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, internal.ErrUserInactive
	}

	if needsUpgrade {
		s.upgradeHash(ctx, db, user, dto.Password)
	}

	var memberID int64
	if user.MemberID != nil {
		memberID = *user.MemberID
	} else {
		// a principal without a roster member holds no role assignments
		s.logger.Warn("user has no linked member record", "user_id", user.ID)
	}

	principal := &internal.Principal{
		UserID:   user.ID,
		MemberID: memberID,
		Email:    user.Email,
		FullName: user.FullName,
		Tenant:   *cfg,
	}

	token, err := s.sessions.Create(ctx, principal)
	if err != nil {
		s.logger.Error("failed to create session", "user_id", user.ID, "error", err)
		return "", nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "db_name", cfg.Name)
	return token, principal, nil
}

// upgradeHash persists the canonical form after a successful legacy match.
// A failed upgrade is logged and ignored; the login itself already succeeded.
func (s *Service) upgradeHash(ctx context.Context, db *sqlx.DB, user *memberDatamodel.User, plaintext string) {
	newHash, err := s.hasher.Hash(plaintext)
	if err != nil {
		s.logger.Warn("hash upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, db, user.ID, newHash); err != nil {
		s.logger.Warn("hash upgrade not persisted", "user_id", user.ID,
			"hash_prefix", password.Prefix(user.PasswordHash), "error", err)
		return
	}
	s.logger.Info("legacy password hash upgraded", "user_id", user.ID)
}

// Logout invalidates the session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// RequestPasswordReset sends a reset link when the account exists. The
// caller always receives the same generic acknowledgement, so the endpoint
// cannot be used to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) {
	cfg, err := s.tenants.ResolveByEmail(ctx, email)
	if err != nil {
		return
	}

	db, err := s.connector.Open(ctx, cfg)
	if err != nil {
		return
	}
	defer db.Close()

	if _, err := s.users.GetByEmail(ctx, db, email); err != nil {
		return
	}

	token, err := s.reset.Sign(email)
	if err != nil {
		s.logger.Error("failed to sign reset token", "error", err)
		return
	}

	if err := s.mailer.SendPasswordReset(ctx, email, token); err != nil {
		s.logger.Error("failed to send reset mail", "error", err)
	}
}

// ConfirmPasswordReset validates the signed token, enforces the password
// policy and persists the canonical hash.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	email, err := s.reset.Verify(token)
	if err != nil {
		return internal.ErrInvalidResetToken
	}

	if err := password.ValidateNew(newPassword); err != nil {
		return err
	}

	cfg, err := s.tenants.ResolveByEmail(ctx, email)
	if err != nil {
		return internal.ErrInvalidResetToken
	}

	db, err := s.connector.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	if err := s.users.UpdatePasswordHashByEmail(ctx, db, email, hash); err != nil {
		s.logger.Error("failed to persist new password", "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logger.Info("password reset completed", "db_name", cfg.Name)
	return nil
}
