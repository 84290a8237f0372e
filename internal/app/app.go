// Package app assembles the server from its configuration. Everything is
// built in New, served by Run and released by Close.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kdimtricp/formcheck/internal/analysis"
	"github.com/kdimtricp/formcheck/internal/api"
	"github.com/kdimtricp/formcheck/internal/auth"
	"github.com/kdimtricp/formcheck/internal/config"
	"github.com/kdimtricp/formcheck/internal/database"
	"github.com/kdimtricp/formcheck/internal/logging"
	"github.com/kdimtricp/formcheck/internal/processing"
	"github.com/kdimtricp/formcheck/internal/storage"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config *config.Config
	logger logging.Logger

	db        *database.DB
	users     *database.UserRepository
	results   *database.ResultRepository
	artifacts *analysis.ArtifactStore
	auth      *auth.Service
	uploads   *processing.Orchestrator
	server    *http.Server
}

func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := database.NewDB(DatabaseConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	applied, err := db.RunMigrations(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	logger.Info(ctx, "database ready", "type", db.Type(), "migrations_applied", applied)

	store, err := NewStorage(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	a := &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		users:   database.NewUserRepository(db),
		results: database.NewResultRepository(db),
	}

	gateway, err := a.newGateway()
	if err != nil {
		db.Close()
		return nil, err
	}

	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}, a.users)
	a.auth = auth.NewService(a.users, a.results, auth.NewPasswordHasher(auth.DefaultBcryptCost), tokens, logger)

	var artifacts processing.ArtifactReader
	if a.artifacts != nil {
		artifacts = a.artifacts
	}
	a.uploads = processing.NewOrchestrator(store, a.users, gateway, a.results, artifacts, logger)

	accessAge, refreshAge := tokens.MaxAge()
	router := api.NewRouter(&api.App{
		Auth:          a.auth,
		Uploads:       a.uploads,
		DB:            db,
		Logger:        logger,
		ClientOrigin:  cfg.ClientOrigin,
		MaxUploadSize: cfg.MaxUploadSize,
		AccessMaxAge:  accessAge,
		RefreshMaxAge: refreshAge,
	})

	a.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info(ctx, "app initialised",
		"analysis_mode", gateway.Mode(),
		"analysis_url", cfg.AnalysisURL,
		"storage", cfg.StorageBackend,
		"max_upload_size", cfg.MaxUploadSize,
	)
	return a, nil
}

// newGateway picks the analysis strategy. Async mode also needs the
// artifact directory, created here before the first request.
func (a *App) newGateway() (analysis.Gateway, error) {
	cfg := a.config
	switch cfg.AnalysisMode {
	case config.ModeSync:
		return analysis.NewSyncGateway(cfg.AnalysisURL, cfg.AnalysisSyncTimeout), nil
	case config.ModeAsync:
		artifacts, err := analysis.NewArtifactStore(cfg.ResultsDir)
		if err != nil {
			return nil, err
		}
		a.artifacts = artifacts
		return analysis.NewAsyncGateway(cfg.AnalysisURL, cfg.AnalysisAsyncTimeout, artifacts), nil
	default:
		return nil, fmt.Errorf("unsupported analysis mode: %s", cfg.AnalysisMode)
	}
}

func DatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Type:       cfg.DBType,
		DSN:        cfg.DatabaseURL,
		SQLitePath: cfg.DBPath,
	}
}

func NewStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return storage.NewLocalStorage(cfg.UploadDir)
	}
}

func (a *App) Uploads() *processing.Orchestrator {
	return a.uploads
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// for at most the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	served := make(chan struct{})

	g.Go(func() error {
		defer close(served)
		a.logger.Info(ctx, "server listening", "addr", ln.Addr().String())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-served:
			return nil
		case <-gctx.Done():
		}

		a.logger.Info(ctx, "shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Close() error {
	return a.db.Close()
}
