package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/cache"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/config"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/database"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/handlers"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/logging"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/mcp"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/mcp/tools"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/middleware"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/repositories"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const serviceName = "rms-insights"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.String("error", logging.SanitizeError(err)))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("redis", cfg.Redis.Host),
		zap.Bool("pushdown", cfg.Insights.PushdownEnabled),
	)

	if err := migrate(cfg, logger); err != nil {
		return err
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:              cfg.Database.ConnectionString(),
		MaxConnections:   cfg.Database.MaxConnections,
		MaxConnLifetime:  time.Hour,
		MaxConnIdleTime:  30 * time.Minute,
		ApplicationName:  serviceName,
		StatementTimeout: cfg.Database.StatementTimeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	engineCfg := cfg.Insights.EngineConfig()
	files := repositories.NewFileRepository(db, engineCfg.RowDataPath, logger)

	var pushdown insights.Strategy
	if cfg.Insights.PushdownEnabled {
		pushdown = insights.NewPushdownExecutor(repositories.NewPushdownRunner(db, logger), engineCfg.RowDataPath, logger)
	}
	executor := insights.NewExecutor(pushdown, insights.NewInMemoryExecutor(files, engineCfg, logger), logger)

	health := handlers.NewHealthHandler(cfg, db, logger)

	var profileCache services.ProfileStore
	var cachePing handlers.PingFunc
	redisClient, err := database.NewRedisClient(ctx, &cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		profileCache = cache.NewRedisProfileStore(redisClient, cfg.Insights.ProfileCacheTTL())
		cachePing = handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		health.WithProfileCache(cachePing)
	}

	profiles := services.NewFileProfileService(files, files, executor, profileCache,
		repositories.NewProfileRepository(db), engineCfg, logger)
	engine := insights.NewEngine(files, files, profiles, executor, engineCfg, logger)

	mux := http.NewServeMux()
	health.RegisterRoutes(mux)
	handlers.NewAskHandler(engine, profiles, logger).RegisterRoutes(mux)
	handlers.NewFilesHandler(files, profiles, logger).RegisterRoutes(mux)

	mcpHealth := tools.HealthDeps{Database: db, Pushdown: cfg.Insights.PushdownEnabled}
	if cachePing != nil {
		mcpHealth.ProfileCache = cachePing
	}
	mcpServer := mcp.NewDatasetServer(mcp.Options{Name: serviceName, Version: cfg.Version, Health: mcpHealth},
		&tools.DatasetToolDeps{
			Engine:   engine,
			Catalog:  files,
			Profiles: profiles,
			Logger:   logger.Named("mcp-tools"),
		}, logger)
	mux.Handle("/mcp", middleware.MCPRequestLogger(logger.Named("mcp-requests"))(mcpServer.Handler()))

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(middleware.ClientIP(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// migrate applies schema migrations over a short-lived database/sql handle.
func migrate(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
