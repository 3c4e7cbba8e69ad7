package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/snapshare/backend/internal/auth"
	"github.com/anonto42/snapshare/backend/internal/handlers"
	"github.com/anonto42/snapshare/backend/internal/metrics"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"github.com/anonto42/snapshare/backend/internal/router"
	"github.com/anonto42/snapshare/backend/internal/storage"
	"github.com/anonto42/snapshare/backend/pkg/config"
	"github.com/anonto42/snapshare/backend/pkg/firebase"
	"github.com/anonto42/snapshare/backend/pkg/logger"
	"github.com/anonto42/snapshare/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const sessionPurgeInterval = time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if !cfg.EnvFileLoaded() {
		zl.Info("no .env file found, using process environment")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer db.Close()

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = repositories.EnsureIndexes(indexCtx, db.Database)
	cancel()
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	store, uploadDir, err := objectStore(ctx, cfg, zl)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewErrorHandler(zl)
	config.SetupMiddleware(e, cfg, zl)

	repos := router.NewMongoRepositories(db.Database, repositories.NewGormSessionRepository(db.Sessions))
	svcs := router.SetupRoutes(e, repos, router.Options{
		Tokens:         auth.NewTokenService(cfg.JWTSecret),
		Store:          store,
		Health:         db,
		Redis:          db.Redis,
		Logger:         zl,
		SecureCookies:  cfg.IsProduction(),
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: cfg.AuthRateWindow,
		UploadDir:      uploadDir,
	})

	go purgeSessions(ctx, svcs, zl)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("metrics server failed", zap.Error(err))
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("http server shutdown", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zl.Error("metrics server shutdown", zap.Error(err))
	}
	return nil
}

// objectStore picks Firebase Storage when credentials are configured and the
// local upload directory otherwise. The directory is returned only in the
// local case, so the router serves it.
func objectStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (storage.ObjectStore, string, error) {
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket, zl)
		if err != nil {
			return nil, "", err
		}
		return storage.NewFirebaseStore(app.Bucket, app.BucketName), "", nil
	}

	local, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	zl.Warn("FIREBASE_CREDENTIALS_PATH not set, storing images on local disk", zap.String("dir", local.Root()))
	return local, local.Root(), nil
}

func purgeSessions(ctx context.Context, svcs *router.Services, zl *zap.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svcs.Auth.PurgeExpired(ctx)
			if err != nil {
				zl.Warn("purging expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				zl.Info("expired sessions purged", zap.Int64("count", n))
			}
		}
	}
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
