// Package server wires the sharebox server together: configuration,
// logging, the profile database, the object store provider, the HTTP API
// and the metrics listener. It also handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/dbx"
	"github.com/dmitrijs2005/sharebox/internal/logging"
	"github.com/dmitrijs2005/sharebox/internal/server/auth"
	"github.com/dmitrijs2005/sharebox/internal/server/config"
	"github.com/dmitrijs2005/sharebox/internal/server/metrics"
	"github.com/dmitrijs2005/sharebox/internal/server/objects"
	"github.com/dmitrijs2005/sharebox/internal/server/profiles"
	profilesrepo "github.com/dmitrijs2005/sharebox/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/sharebox/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sharebox/internal/server/storage"
	"github.com/dmitrijs2005/sharebox/internal/server/web"
)

const generatedSecretSize = 32

type App struct {
	config   *config.Config
	logger   logging.Logger
	metrics  *metrics.Metrics
	provider *storage.Provider
	web      *web.Server
	closers  []func() error
}

// seam for tests
var openDatabase = repomanager.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	app := &App{config: c, logger: logger, metrics: metrics.New()}

	sessionSecret := []byte(c.SessionSecret)
	if len(sessionSecret) == 0 {
		logger.Warn(ctx, "SESSION_SECRET is not set; sessions will not survive a restart")
		sessionSecret = common.GenerateRandByteArray(generatedSecretSize)
	}

	repo, tx, profileSecret, err := app.profileRepository(ctx, sessionSecret)
	if err != nil {
		return nil, err
	}

	var profileService *profiles.Service
	source := storage.SettingsSourceFunc(func(ctx context.Context, code string) (storage.Settings, error) {
		return profileService.Settings(ctx, code)
	})
	app.provider = storage.NewProvider(app.defaultSettings(), source,
		storage.WithPresignExpiry(c.PresignExpiry),
		storage.WithRetryPolicy(storage.RetryPolicy{MaxAttempts: c.RetryMaxAttempts, BaseDelay: c.RetryBaseDelay}),
		storage.WithObserver(app.metrics),
		storage.WithBreaker("s3", uint32(c.BreakerFailures), c.BreakerTimeout),
	)

	profileService, err = profiles.NewService(repo, profileSecret, app.provider, logger.With("module", "profiles"),
		profiles.WithTx(tx))
	if err != nil {
		app.close()
		return nil, err
	}

	resolver := objects.ResolverFunc(func(ctx context.Context) (objects.Store, error) {
		client, err := app.provider.ForContext(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	objectService := objects.NewService(resolver, logger.With("module", "objects"), objects.WithUploadMode(c.UploadMode))

	app.web, err = web.NewServer(web.Options{
		Addr:            c.HTTPAddr,
		SessionSecret:   sessionSecret,
		SecureCookies:   c.SecureCookies,
		AuthRateLimit:   c.AuthRateLimit,
		AuthRateBurst:   c.AuthRateBurst,
		MaxUploadSize:   c.MaxUploadSize,
		ShutdownTimeout: c.ShutdownTimeout,
	}, objectService, profileService, auth.NewCodeChecker(c.AccessCode, c.AccessCodeHash), app.metrics, logger)
	if err != nil {
		app.close()
		return nil, err
	}

	if err := app.defaultSettings().Validate(); err != nil {
		logger.Warn(ctx, "default object store is incomplete; requests will fail until a profile is selected", "error", err)
	}
	return app, nil
}

func (app *App) defaultSettings() storage.Settings {
	return storage.Settings{
		Endpoint:  app.config.S3Endpoint,
		Region:    app.config.S3Region,
		AccessKey: app.config.S3AccessKey,
		SecretKey: app.config.S3SecretKey,
		Bucket:    app.config.S3Bucket,
	}
}

// profileRepository opens the configured profile database, or keeps
// profiles in memory when none is configured.
func (app *App) profileRepository(ctx context.Context, sessionSecret []byte) (profilesrepo.Repository, profiles.TxFunc, []byte, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Info(ctx, "DATABASE_DSN is not set; connection profiles are kept in memory")
		secret := []byte(app.config.ProfileSecret)
		if len(secret) == 0 {
			secret = sessionSecret
		}
		return profilesrepo.NewMemoryRepository(), nil, secret, nil
	}

	if app.config.ProfileSecret == "" {
		return nil, nil, nil, fmt.Errorf("PROFILE_SECRET or SESSION_SECRET is required with DATABASE_DSN: %w", common.ErrorMissingSetting)
	}
	db, mgr, err := openDatabase(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db init error: %w", err)
	}
	app.closers = append(app.closers, db.Close)
	tx := func(ctx context.Context, fn func(context.Context, profilesrepo.Repository) error) error {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, q dbx.DBTX) error {
			return fn(ctx, mgr.Profiles(q))
		})
	}
	return mgr.Profiles(db), tx, []byte(app.config.ProfileSecret), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startWebServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.web.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server stopped", "error", err)
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "metrics server listening", "addr", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "metrics server stopped", "error", err)
		cancelFunc()
	}
}

// Run serves until a signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startWebServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()
	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	for _, c := range app.closers {
		if err := c(); err != nil {
			app.logger.Error(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}
