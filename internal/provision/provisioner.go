// Package provision creates tenant databases end to end: the database and
// its dedicated MySQL account, the schema, the permission catalogue, and the
// bootstrap admin for a fresh tenant.
package provision

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/jmoiron/sqlx"

	tenantDatamodel "github.com/maviontech/project-management/internal/core/datamodel/tenant"
	"github.com/maviontech/project-management/internal/password"
	"github.com/maviontech/project-management/internal/tenant"
)

// bootstrapAdminPassword is the well-known first login for a fresh tenant.
// The seeded account is expected to change it immediately.
const bootstrapAdminPassword = "admin123"

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_!@#"

const generatedPasswordLength = 18

// randomPassword draws from crypto/rand. The alphabet contains no quoting
// characters, so the result can appear inside a MySQL IDENTIFIED BY literal.
func randomPassword(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// MySQLProvisioner provisions tenants against a MySQL server reachable with
// admin credentials. The admin connection is only ever used here; request
// paths use the per-tenant accounts this type creates.
type MySQLProvisioner struct {
	adminDSN  string
	registry  tenant.Registry
	connector tenant.Connector
	hasher    *password.Hasher
	logger    *slog.Logger

	// openAdmin is swappable for tests
	openAdmin func(ctx context.Context) (*sqlx.DB, error)
}

func NewMySQLProvisioner(
	adminDSN string,
	registry tenant.Registry,
	connector tenant.Connector,
	hasher *password.Hasher,
	logger *slog.Logger,
) *MySQLProvisioner {
	p := &MySQLProvisioner{
		adminDSN:  adminDSN,
		registry:  registry,
		connector: connector,
		hasher:    hasher,
		logger:    logger,
	}
	p.openAdmin = p.openAdminConn
	return p
}

func (p *MySQLProvisioner) openAdminConn(ctx context.Context) (*sqlx.DB, error) {
	admin, err := sqlx.Open("mysql", p.adminDSN)
	if err != nil {
		return nil, fmt.Errorf("open admin connection: %w", err)
	}
	if err := admin.PingContext(ctx); err != nil {
		_ = admin.Close()
		return nil, fmt.Errorf("ping admin connection: %w", err)
	}
	return admin, nil
}

// Provision brings one tenant to a usable state. Every step is idempotent:
// an interrupted run can be retried, and existing credentials, schema, grants
// and users are left alone.
func (p *MySQLProvisioner) Provision(ctx context.Context, client *tenantDatamodel.Client) (string, string, error) {
	dbUser := client.DBUser
	dbPassword := client.DBPassword
	if dbUser == "" {
		dbUser = fmt.Sprintf("tenant_%d", client.ID)
		var err error
		dbPassword, err = randomPassword(generatedPasswordLength)
		if err != nil {
			return "", "", fmt.Errorf("generate tenant password: %w", err)
		}
	}

	admin, err := p.openAdmin(ctx)
	if err != nil {
		return "", "", err
	}
	defer admin.Close()

	if err := p.createDatabaseAndUser(ctx, admin, client.DBName, dbUser, dbPassword); err != nil {
		return "", "", err
	}

	if err := p.registry.UpdateCredentials(ctx, client.ID, dbUser, dbPassword); err != nil {
		return "", "", fmt.Errorf("store tenant credentials: %w", err)
	}
	client.DBUser = dbUser
	client.DBPassword = dbPassword

	cfg := client.Config()
	db, err := p.connector.Open(ctx, &cfg)
	if err != nil {
		return "", "", fmt.Errorf("connect to tenant database: %w", err)
	}
	defer db.Close()

	for _, stmt := range tenantDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return "", "", fmt.Errorf("apply tenant schema: %w", err)
		}
	}

	if err := seedRBAC(ctx, db); err != nil {
		return "", "", err
	}

	if err := p.seedAdmin(ctx, db, client.DomainPostfix); err != nil {
		return "", "", err
	}

	p.logger.Info("tenant provisioned",
		"tenant_id", client.ID,
		"db_name", client.DBName,
		"db_user", dbUser)
	return dbUser, dbPassword, nil
}

// createDatabaseAndUser runs the DDL that needs server-level privileges. The
// tenant account is granted access to its own database and nothing else;
// identifiers are validated at tenant registration, the password alphabet is
// quote-free.
func (p *MySQLProvisioner) createDatabaseAndUser(ctx context.Context, admin *sqlx.DB, dbName, dbUser, dbPassword string) error {
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", dbName),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", dbUser, dbPassword),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'%%'", dbName, dbUser),
		"FLUSH PRIVILEGES",
	}
	for _, stmt := range stmts {
		if _, err := admin.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("provision database %s: %w", dbName, err)
		}
	}
	return nil
}

// ProvisionAll runs provisioning for every registered tenant. Failures are
// isolated per tenant so one broken registration cannot block the rest; the
// batch itself always completes.
func (p *MySQLProvisioner) ProvisionAll(ctx context.Context) (provisioned, failed int) {
	clients, err := p.registry.List(ctx)
	if err != nil {
		p.logger.Error("cannot list tenants for provisioning", "error", err)
		return 0, 0
	}

	for _, client := range clients {
		if _, _, err := p.Provision(ctx, client); err != nil {
			failed++
			p.logger.Error("tenant provisioning failed",
				"tenant_id", client.ID,
				"db_name", client.DBName,
				"error", err)
			continue
		}
		provisioned++
	}

	p.logger.Info("provisioning batch finished", "provisioned", provisioned, "failed", failed)
	return provisioned, failed
}
