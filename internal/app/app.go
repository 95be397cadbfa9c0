package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/coursetree/internal/config"
	"github.com/yungbote/coursetree/internal/data/db"
	"github.com/yungbote/coursetree/internal/data/repos"
	"github.com/yungbote/coursetree/internal/observability"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	DB       *db.Service
	Repos    repos.Set
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from the log config section.
func NewLogger(cfg config.LogConfig) (*logger.Logger, error) {
	mode := strings.TrimSpace(cfg.Mode)
	if mode == "" {
		mode = "development"
	}
	return logger.NewWithOptions(logger.Options{
		Mode:       mode,
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	})
}

// New wires the full ingestion stack. With storage false only the
// validate-only path is wired and no database or external client is opened.
func New(ctx context.Context, cfg *config.Config, storage bool) (*App, error) {
	log, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &App{
		Log:     log,
		Cfg:     cfg,
		Metrics: observability.NewMetrics(),
	}
	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{ServiceName: "coursetree"})

	if !storage {
		a.Services = wireServices(log, cfg, a.Metrics, nil, nil, Clients{})
		return a, nil
	}

	log.Info("Opening database...", "driver", cfg.Database.Driver)
	dbs, err := db.Open(cfg.Database, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.DB = dbs
	if cfg.Database.AutoMigrate {
		if err := dbs.AutoMigrateAll(); err != nil {
			a.Close()
			return nil, fmt.Errorf("database automigrate: %w", err)
		}
	}

	a.Repos = wireRepos(dbs, log)
	clients, err := wireClients(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients
	a.Services = wireServices(log, cfg, a.Metrics, dbs.DB(), &a.Repos, clients)
	return a, nil
}

// Close releases clients and flushes metrics, traces and logs.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx := context.Background()
	a.Clients.close(ctx, a.Log)
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if path := strings.TrimSpace(a.Cfg.Metrics.Textfile); path != "" {
		if err := a.Metrics.WriteTextfile(path); err != nil {
			a.Log.Warn("metrics textfile write failed", "path", path, "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
