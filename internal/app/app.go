package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/data/db"
	"github.com/yungbote/funny-backend/internal/data/seed"
	"github.com/yungbote/funny-backend/internal/http"
	"github.com/yungbote/funny-backend/internal/observability"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Store    *db.Service
	DB       *gorm.DB
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services
	Server   *http.Server

	shutdown []func(context.Context) error
}

// New loads configuration from cfgPath (optional) and the environment and
// connects to the database. It does not migrate or listen.
func New(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &App{Log: log, Cfg: cfg}

	flush, err := observability.InitSentry(observability.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.App.Environment,
		Release:     cfg.App.Version,
		SampleRate:  cfg.Sentry.SampleRate,
	})
	if err != nil {
		log.Warn("sentry init failed", "error", err)
	}
	a.onClose(func(context.Context) error { flush(); return nil })

	if stop := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: serviceName(cfg),
		Environment: cfg.App.Environment,
		Version:     cfg.App.Version,
		Endpoint:    cfg.Otel.Endpoint,
		Insecure:    cfg.Otel.Insecure,
		SampleRatio: cfg.Otel.SampleRatio,
	}); stop != nil {
		a.onClose(stop)
	}

	store, err := db.Open(cfg.Database(), log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.Store = store
	a.DB = store.DB()
	a.onClose(func(context.Context) error { return store.Close() })

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m, err := observability.NewProcess(reg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := m.RegisterDB(reg, sqlDB, cfg.DB.Name); err != nil {
				log.Warn("db stats collector not registered", "error", err)
			}
		}
		a.Metrics = m
	}

	clients, err := wireClients(log, cfg, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repos = wireRepos(a.DB, log)
	a.Services = wireServices(a.DB, log, cfg, a.Repos, clients, a.Metrics)
	handlers := wireHandlers(log, cfg, a.Services)

	a.Server = http.NewServer(http.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second,
	}, routerConfig(log, cfg, handlers, a.Services, a.Metrics))
	return a, nil
}

// Migrate brings the schema up to date: goose for postgres, AutoMigrate for
// sqlite or when db.auto_migrate is set.
func (a *App) Migrate(ctx context.Context) error {
	if a.Cfg.DB.AutoMigrate {
		a.Log.Info("Running AutoMigrate...")
		return a.Store.AutoMigrateAll()
	}
	a.Log.Info("Running migrations...")
	return a.Store.MigrateUp(ctx)
}

// Seed loads the embedded reference data and, with demo set, the demo roster.
func (a *App) Seed(ctx context.Context, demo bool) (seed.Result, error) {
	f, err := seed.Default()
	if err != nil {
		return seed.Result{}, err
	}
	return seed.NewSeeder(a.DB, a.Log).Run(ctx, f, demo)
}

// Run serves HTTP until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Server.Addr)
		return a.Server.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down...")
		return nil
	})
	return g.Wait()
}

func (a *App) onClose(fn func(context.Context) error) {
	a.shutdown = append(a.shutdown, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil && a.Log != nil {
			a.Log.Warn("shutdown step failed", "error", err)
		}
	}
	a.shutdown = nil
	if a.Log != nil {
		a.Log.Sync()
	}
}

func serviceName(cfg Config) string {
	if cfg.App.Environment == "" {
		return "funny-backend"
	}
	return "funny-backend-" + cfg.App.Environment
}
