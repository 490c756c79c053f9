package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stewardhq/steward/internal/app"
	"github.com/stewardhq/steward/internal/auth"
	"github.com/stewardhq/steward/internal/observability"
	"github.com/stewardhq/steward/internal/platform/cache"
	"github.com/stewardhq/steward/internal/platform/db"
	"github.com/stewardhq/steward/internal/rbac"
	"github.com/stewardhq/steward/internal/shared"
	"github.com/stewardhq/steward/internal/users"
)

const directoryVersionKey = "directory:version"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, user list cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}
	directoryCache := cache.NewVersioned(redisClient, directoryVersionKey, cfg.CacheTTL)

	accounts, err := auth.NewStore(auth.DefaultSeeds())
	if err != nil {
		logger.Error("seed accounts", slog.Any("error", err))
		os.Exit(1)
	}
	tokenCodec := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(accounts, tokenCodec)
	authHandler := auth.NewHandler(logger, authService, cfg.IsProduction())
	authGate := auth.Middleware{Service: authService, Logger: logger}

	auditLogger := shared.NewAuditLogger(dbpool)

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo, directoryCache, auditLogger, logger)
	rolesHandler := rbac.NewHandler(logger, rbacService)
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, rbacService, directoryCache, auditLogger, logger)
	usersHandler := users.NewHandler(logger, usersService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthHandler:        authHandler,
		AuthGate:           authGate,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permissionsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
