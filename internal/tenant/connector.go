package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	"github.com/maviontech/project-management/internal/core/datamodel/tenant"

	_ "github.com/go-sql-driver/mysql"
)

// Connector opens a connection to one tenant's database. Connections are
// scoped per request/operation: acquire, use, release. Opening one tenant's
// connection can never touch another tenant's database.
type Connector interface {
	Open(ctx context.Context, cfg *tenant.Config) (*sqlx.DB, error)
}

type MySQLConnector struct {
	logger *slog.Logger
}

func NewMySQLConnector(logger *slog.Logger) *MySQLConnector {
	return &MySQLConnector{logger: logger}
}

// Open connects with the tenant's own credentials. Missing credentials mean
// the tenant was never provisioned; that is fatal for this operation and must
// not fall back to shared admin credentials.
func (c *MySQLConnector) Open(ctx context.Context, cfg *tenant.Config) (*sqlx.DB, error) {
	if cfg == nil || !cfg.Complete() {
		c.logger.Error("tenant credentials incomplete, run provisioner",
			"db_name", dbNameOrEmpty(cfg))
		return nil, internal.ErrCredentialsIncomplete
	}
	if cfg.Engine != "" && cfg.Engine != "mysql" {
		return nil, internal.NewInternalError(fmt.Sprintf("unsupported tenant db engine %q", cfg.Engine), nil)
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		c.logger.Error("failed to open tenant connection", "db_name", cfg.Name, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	// short-lived connections, no pool buildup per request
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(time.Minute)

	pingCtx, cancel := internal.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		c.logger.Error("tenant database unreachable", "db_name", cfg.Name, "host", cfg.Host, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	return db, nil
}

// OpenFromPrincipal opens the tenant database that was resolved at login and
// stored in the session principal.
func (c *MySQLConnector) OpenFromPrincipal(ctx context.Context, p *internal.Principal) (*sqlx.DB, error) {
	return c.Open(ctx, &p.Tenant)
}

func dbNameOrEmpty(cfg *tenant.Config) string {
	if cfg == nil {
		return ""
	}
	return cfg.Name
}
