package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "uigen/internal/adapter/http"
	"uigen/internal/adapter/memory"
	"uigen/internal/adapter/postgres"
	"uigen/internal/adapter/sqlite"
	"uigen/internal/app"
	"uigen/internal/config"
	"uigen/internal/domain"
	"uigen/internal/observability"
	"uigen/internal/session"
)

type repository interface {
	domain.UserRepository
	domain.ProjectRepository
	domain.AnonWorkRepository
}

type storage struct {
	repo  repository
	ping  func(ctx context.Context) error
	close func() error
}

func main() {
	if err := run(); err != nil {
		observability.Logger().Error("exiting", "error", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup, closing storage
// included, always runs.
func run() error {
	cfg := config.Load()
	logger := observability.Setup(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.UsingDevSecret() {
		logger.Warn("JWT_SECRET is not set; sessions are signed with the public development secret")
	}

	st, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage, err)
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("close storage", "error", err)
		}
	}()

	tokens, err := session.NewTokenService([]byte(cfg.JWTSecret), session.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	sessions := session.NewStore(tokens, cfg.SecureCookies())

	authSvc := app.NewAuthService(st.repo, sessions)
	projectSvc := app.NewProjectService(st.repo, sessions)
	anonSvc := app.NewAnonWorkService(st.repo, cfg.SecureCookies())

	h := adapthttp.New(authSvc, projectSvc, anonSvc, sessions).
		WithHealthCheck(st.ping).
		Handler()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.Addr, "env", cfg.Env, "storage", cfg.Storage)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func openStorage(cfg *config.Config) (*storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return &storage{
			repo:  memory.New(),
			ping:  func(context.Context) error { return nil },
			close: func() error { return nil },
		}, nil
	case config.StoragePostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &storage{repo: db, ping: db.Ping, close: db.Close}, nil
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{repo: db, ping: db.Ping, close: db.Close}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
