package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	gormMySQL "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/maviontech/project-management/internal"
	"github.com/maviontech/project-management/internal/auth"
	authMySQL "github.com/maviontech/project-management/internal/auth/mysql"
	"github.com/maviontech/project-management/internal/chat"
	chatMySQL "github.com/maviontech/project-management/internal/chat/mysql"
	"github.com/maviontech/project-management/internal/export"
	exportMySQL "github.com/maviontech/project-management/internal/export/mysql"
	"github.com/maviontech/project-management/internal/member"
	memberMySQL "github.com/maviontech/project-management/internal/member/mysql"
	"github.com/maviontech/project-management/internal/password"
	"github.com/maviontech/project-management/internal/project"
	projectMySQL "github.com/maviontech/project-management/internal/project/mysql"
	"github.com/maviontech/project-management/internal/provision"
	"github.com/maviontech/project-management/internal/rbac"
	rbacMySQL "github.com/maviontech/project-management/internal/rbac/mysql"
	"github.com/maviontech/project-management/internal/session"
	"github.com/maviontech/project-management/internal/task"
	taskMySQL "github.com/maviontech/project-management/internal/task/mysql"
	"github.com/maviontech/project-management/internal/team"
	teamMySQL "github.com/maviontech/project-management/internal/team/mysql"
	"github.com/maviontech/project-management/internal/tenant"
	tenantMySQL "github.com/maviontech/project-management/internal/tenant/mysql"
	"github.com/maviontech/project-management/internal/timetrack"
	timetrackMySQL "github.com/maviontech/project-management/internal/timetrack/mysql"
	"github.com/maviontech/project-management/internal/transport"
	"github.com/maviontech/project-management/internal/transport/middleware"
	"github.com/maviontech/project-management/internal/transport/rest"
	"github.com/maviontech/project-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type dependencies struct {
	Config   *internal.Config
	MasterDB *gorm.DB
	Redis    *redis.Client
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if sqlDB, err := deps.MasterDB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				deps.Logger.Error("master database close error", "error", err)
			}
		}
		if err := deps.Redis.Close(); err != nil {
			deps.Logger.Error("redis close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	masterDB, err := initMasterDB(cfg.MasterDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize master database: %w", err)
	}
	sqlDB, err := masterDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap master database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	hasher := password.NewHasher(cfg.Security.BCryptCost)
	sessions := session.NewRedisStore(redisClient, session.Options{TTL: cfg.Session.TTL})
	connector := tenant.NewMySQLConnector(log)
	registry := tenantMySQL.NewRegistryRepository(masterDB)

	provisioner := provision.NewMySQLProvisioner(cfg.MasterDB.AdminDSN(), registry, connector, hasher, log)
	tenantService := tenant.NewService(registry, provisioner, log)

	resolver := rbac.NewResolver(log)
	rbacService := rbac.NewService(connector, rbacMySQL.NewRepository(), resolver, log)

	signer := auth.NewResetTokenSigner(cfg.Security.ResetTokenSecret, cfg.Security.ResetTokenDuration)
	authService := auth.NewService(
		tenantService,
		connector,
		authMySQL.NewUserRepository(),
		hasher,
		sessions,
		signer,
		&auth.LogMailer{Logger: log},
		log,
	)

	handlers := rest.Handlers{
		Auth:      auth.NewHandler(transport.NewBaseHandler(log), authService, cfg.Session.CookieName),
		Project:   project.NewHandler(project.NewService(connector, projectMySQL.NewRepository(), log)),
		Task:      task.NewHandler(task.NewService(connector, taskMySQL.NewRepository(), log)),
		TimeTrack: timetrack.NewHandler(timetrack.NewService(connector, timetrackMySQL.NewRepository(), log)),
		Member:    member.NewHandler(member.NewService(connector, memberMySQL.NewRepository(), log)),
		Team:      team.NewHandler(team.NewService(connector, teamMySQL.NewRepository(), log)),
		RBAC:      rbac.NewHandler(rbacService),
		Chat:      chat.NewHandler(chat.NewService(connector, chatMySQL.NewRepository(), log)),
		Export:    export.NewHandler(export.NewService(connector, exportMySQL.NewRepository(), log)),
		Tenant:    tenant.NewHandler(tenantService),
	}

	gate := &middleware.Gate{Connector: connector, Resolver: resolver, Logger: log}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, sqlDB, redisClient, handlers, gate, sessions,
		cfg.Session.CookieName, cfg.Security.AdminAPIKey, log)

	return &dependencies{
		Config:   cfg,
		MasterDB: masterDB,
		Redis:    redisClient,
		Router:   router,
		Logger:   log,
	}, nil
}

func initMasterDB(cfg internal.MasterDBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(gormMySQL.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open master db connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping master db: %w", err)
	}

	return db, nil
}
