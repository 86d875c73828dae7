package tenant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maviontech/project-management/internal"
	"github.com/maviontech/project-management/internal/core/datamodel/tenant"
)

// Registry is the data access surface over the shared clients_master table.
type Registry interface {
	GetByDomainPostfix(ctx context.Context, postfix string) (*tenant.Client, error)
	GetByID(ctx context.Context, id int64) (*tenant.Client, error)
	List(ctx context.Context) ([]*tenant.Client, error)
	ExistsByDomainOrDBName(ctx context.Context, postfix, dbName string) (bool, error)
	Create(ctx context.Context, client *tenant.Client) error
	UpdateCredentials(ctx context.Context, id int64, dbUser, dbPassword string) error
}

// Provisioner creates the tenant database, credentials, schema and seed
// data. Implemented by internal/provision.
type Provisioner interface {
	Provision(ctx context.Context, client *tenant.Client) (dbUser, dbPassword string, err error)
}

// Service resolves tenants from email domains and drives tenant creation.
type Service struct {
	registry    Registry
	provisioner Provisioner
	logger      *slog.Logger
}

func NewService(registry Registry, provisioner Provisioner, logger *slog.Logger) *Service {
	return &Service{
		registry:    registry,
		provisioner: provisioner,
		logger:      logger,
	}
}

// DomainPostfix extracts the "@domain" suffix from a well-formed email.
// The address must contain exactly one '@' with a non-empty domain.
func DomainPostfix(email string) (string, error) {
	if strings.Count(email, "@") != 1 {
		return "", internal.NewValidationError("email address is malformed", internal.ErrCodeValidationFailed)
	}
	at := strings.IndexByte(email, '@')
	domain := email[at+1:]
	if at == 0 || domain == "" {
		return "", internal.NewValidationError("email address is malformed", internal.ErrCodeValidationFailed)
	}
	return "@" + domain, nil
}

// ResolveByEmail maps an email to its tenant's connection config via the
// unique domain_postfix index. A miss is an expected input condition, not a
// server error: the caller should prompt for a different email or offer
// tenant creation.
func (s *Service) ResolveByEmail(ctx context.Context, email string) (*tenant.Config, error) {
	postfix, err := DomainPostfix(email)
	if err != nil {
		return nil, err
	}

	client, err := s.registry.GetByDomainPostfix(ctx, postfix)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeTenantNotFound {
			return nil, err
		}
		s.logger.Error("tenant lookup failed", "domain_postfix", postfix, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	cfg := client.Config()
	return &cfg, nil
}

// CreateTenant registers a new client in the master registry and provisions
// its database end to end.
func (s *Service) CreateTenant(ctx context.Context, dto CreateTenantDTO) (*tenant.Client, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	postfix := "@" + dto.Domain
	exists, err := s.registry.ExistsByDomainOrDBName(ctx, postfix, dto.DBName)
	if err != nil {
		s.logger.Error("tenant uniqueness check failed", "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	if exists {
		return nil, internal.ErrTenantExists
	}

	client := &tenant.Client{
		ClientName:    dto.ClientName,
		DomainPostfix: postfix,
		DBName:        dto.DBName,
		DBHost:        dto.DBHost,
		DBPort:        dto.DBPort,
		DBEngine:      "mysql",
	}
	if client.DBHost == "" {
		client.DBHost = "127.0.0.1"
	}
	if client.DBPort == 0 {
		client.DBPort = 3306
	}

	if err := s.registry.Create(ctx, client); err != nil {
		s.logger.Error("failed to insert tenant record", "db_name", dto.DBName, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	dbUser, dbPassword, err := s.provisioner.Provision(ctx, client)
	if err != nil {
		s.logger.Error("tenant provisioning failed", "tenant_id", client.ID, "db_name", client.DBName, "error", err)
		return nil, internal.NewInternalError("tenant provisioning failed", err)
	}
	client.DBUser = dbUser
	client.DBPassword = dbPassword

	s.logger.Info("tenant created", "tenant_id", client.ID, "domain_postfix", client.DomainPostfix, "db_name", client.DBName)
	return client, nil
}

// ReprovisionTenant re-runs provisioning for an existing tenant. Safe to call
// on a healthy tenant: every provisioning step is idempotent, so this repairs
// missing tables, seed rows or credentials without touching existing data.
func (s *Service) ReprovisionTenant(ctx context.Context, id int64) error {
	client, err := s.registry.GetByID(ctx, id)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeTenantNotFound {
			return err
		}
		s.logger.Error("tenant lookup failed", "tenant_id", id, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}

	if _, _, err := s.provisioner.Provision(ctx, client); err != nil {
		s.logger.Error("tenant reprovisioning failed", "tenant_id", id, "db_name", client.DBName, "error", err)
		return internal.NewInternalError("tenant provisioning failed", err)
	}

	s.logger.Info("tenant reprovisioned", "tenant_id", id, "db_name", client.DBName)
	return nil
}

// ListTenants returns all registered clients (operator surface).
func (s *Service) ListTenants(ctx context.Context) ([]*tenant.Client, error) {
	clients, err := s.registry.List(ctx)
	if err != nil {
		s.logger.Error("failed to list tenants", "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return clients, nil
}
