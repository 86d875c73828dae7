package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maviontech/project-management/internal/password"
	"github.com/maviontech/project-management/internal/provision"
	"github.com/maviontech/project-management/internal/tenant"
	tenantMySQL "github.com/maviontech/project-management/internal/tenant/mysql"
	"github.com/maviontech/project-management/pkg/logger"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision every registered tenant database",
	Long: `Walks the master registry and brings each tenant's database, schema
and seed data up to date. Idempotent: already-provisioned tenants are
repaired or skipped, never rebuilt.`,
	Run: func(cmd *cobra.Command, args []string) {
		runProvisionAll()
	},
}

func runProvisionAll() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	masterDB, err := initMasterDB(cfg.MasterDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to master database: %v\n", err)
		os.Exit(1)
	}

	registry := tenantMySQL.NewRegistryRepository(masterDB)
	connector := tenant.NewMySQLConnector(log)
	hasher := password.NewHasher(cfg.Security.BCryptCost)
	provisioner := provision.NewMySQLProvisioner(cfg.MasterDB.AdminDSN(), registry, connector, hasher, log)

	provisioned, failed := provisioner.ProvisionAll(context.Background())
	log.Info("provisioning run complete", "provisioned", provisioned, "failed", failed)

	// a partial run is still useful; the next run picks up the failures
	if sqlDB, err := masterDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
