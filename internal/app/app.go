package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ticketdash/internal/cache"
	"ticketdash/internal/config"
	"ticketdash/internal/connectors"
	"ticketdash/internal/connectors/provider"
	"ticketdash/internal/dashboard"
	"ticketdash/internal/metrics"
	"ticketdash/internal/refresher"
	"ticketdash/internal/storage"
)

// App holds the long-lived components shared by the binaries.
type App struct {
	Cfg       config.Config
	Log       *zap.Logger
	DB        *storage.DB
	Metrics   *metrics.Metrics
	Fetch     *connectors.FetchService
	Cache     *cache.BatchCache
	Dash      *dashboard.Service
	Refresher *refresher.Service
}

func NewLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.LogDev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// New connects to the configured store and wires the fetch, cache and
// dashboard layers on top of it. reg may be nil.
func New(ctx context.Context, cfg config.Config, log *zap.Logger, reg prometheus.Registerer) (*App, error) {
	if err := cfg.Require("FOLDER_ID", cfg.FolderID); err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	store, err := provider.New(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return Wire(cfg, log, reg, db, store), nil
}

// Wire assembles the components around an already open db and store.
func Wire(cfg config.Config, log *zap.Logger, reg prometheus.Registerer, db *storage.DB, store connectors.FileStore) *App {
	m := metrics.New(reg)
	fetch := connectors.NewFetchService(store, cfg, connectors.NewDocumentStore(db, cfg.RawDocDir), log.Named("fetch"), m)
	batches := cache.New(fetch, cfg.CacheTTL(), db, log.Named("cache"), m)
	dash := dashboard.NewService(cfg, batches, fetch, log.Named("dashboard"))

	return &App{
		Cfg:       cfg,
		Log:       log,
		DB:        db,
		Metrics:   m,
		Fetch:     fetch,
		Cache:     batches,
		Dash:      dash,
		Refresher: refresher.NewService(db, cfg, batches, dash, log.Named("refresher")),
	}
}

func (a *App) Close() error {
	return a.DB.Close()
}
