package app

import (
	"context"
	"fmt"
	"os"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/addon"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/experiments"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/config"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/database"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/monitoring"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/resilience"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/browser"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/http/client"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/ipc"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/periodic"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/settings"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/storage"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/registry"
	"go.uber.org/zap"
)

// AddonID identifies the add-on to the host.
const AddonID = "switchboard-experiments@androidzeitgeist.com"

// Version is reported in AddonData.
var Version = "1.0.0"

// App holds the assembled host and add-on.
type App struct {
	Config    *config.Config
	Logger    *logging.Logger
	Metrics   *monitoring.Metrics
	Pool      *database.Pool
	Rows      *storage.Provider
	Settings  *settings.Provider
	Messenger *ipc.Dispatcher
	Client    *client.Client
	Panels    *registry.Manager
	Pages     *browser.Registry
	Scheduler *periodic.Scheduler
	Fetcher   *experiments.Fetcher
	Sync      *experiments.OverrideSync
	Addon     *addon.Addon
	Data      host.AddonData
}

// New builds an App from cfg. The add-on is constructed but not started.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	metrics := monitoring.NewMetrics()

	pool, err := database.Open(database.Config{Path: cfg.Storage.Path, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Pool:      pool,
		Rows:      storage.NewProvider(pool),
		Settings:  settings.NewProvider(pool, logger),
		Messenger: ipc.NewDispatcher(logger),
		Panels:    registry.NewManager(logger),
		Pages:     browser.NewRegistry(logger),
		Scheduler: periodic.New(logger, periodic.WithJitter(0.1)),
		Data:      host.AddonData{ID: AddonID, Version: Version},
	}
	if wd, err := os.Getwd(); err == nil {
		a.Data.InstallPath = wd
	}

	a.Messenger.Register(host.MessageGetActive,
		ipc.ActiveExperiments(cfg.Experiments.Active, a.Settings, cfg.Experiments.PayloadFormat))

	a.Client = client.NewClient(client.Options{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
		RateLimit: cfg.HTTP.RateLimit,
		Breaker: resilience.Settings{
			FailureThreshold: cfg.HTTP.BreakerFailures,
			OpenTimeout:      cfg.HTTP.BreakerTimeout,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("breaker", name), zap.Stringer("from", from), zap.Stringer("to", to))
			},
		},
	})

	// Sync mode busts caches; the page reads a static document as-is.
	syncFetcher := experiments.NewFetcher(a.Client, experiments.FetcherOptions{
		CacheBust: cfg.Experiments.CacheBust,
		Metrics:   metrics,
		Logger:    logger,
	})
	pageFetcher := experiments.NewFetcher(a.Client, experiments.FetcherOptions{
		Metrics: metrics,
		Logger:  logger,
	})

	a.Fetcher = syncFetcher
	a.Sync = experiments.NewOverrideSync(a.Messenger, a.Settings, metrics, logger)

	a.Addon = addon.New(a.Host(), addon.Options{
		PanelID:      cfg.Panel.ID,
		DatasetID:    cfg.Panel.DatasetID,
		Title:        cfg.Panel.Title,
		ConfigURL:    cfg.Experiments.ConfigURL,
		SyncInterval: cfg.Experiments.SyncInterval,
	}, addon.Deps{
		Fetcher: syncFetcher,
		Sync:    a.Sync,
		Pages: browser.NewFactory(pageFetcher, a.Sync, browser.PageOptions{
			URL:     cfg.Experiments.PageURL,
			Metrics: metrics,
			Logger:  logger,
		}),
		Metrics: metrics,
		Logger:  logger,
	})

	return a, nil
}

// Host returns the host services the add-on runs against.
func (a *App) Host() host.Host {
	return host.Host{
		Panels:    a.Panels,
		Scheduler: a.Scheduler,
		Storage:   a.Rows,
		Messenger: a.Messenger,
		Overrides: a.Settings,
		Pages:     a.Pages,
	}
}

// Start runs the add-on's install hook when requested, then Startup.
func (a *App) Start(ctx context.Context, reason host.Reason) {
	if reason == host.ReasonAddonInstall {
		a.Addon.Install(ctx, a.Data, reason)
	}
	a.Addon.Startup(ctx, a.Data, reason)
}

// Stop runs Shutdown, and Uninstall after it for an uninstall.
func (a *App) Stop(ctx context.Context, reason host.Reason) {
	a.Addon.Shutdown(ctx, a.Data, reason)
	if reason == host.ReasonAddonUninstall {
		a.Addon.Uninstall(ctx, a.Data, reason)
	}
}

// Close stops the scheduler, waits for background cycles and closes storage.
func (a *App) Close() error {
	if err := a.Scheduler.Close(); err != nil {
		a.Logger.Error("Failed to close scheduler", zap.Error(err))
	}
	a.Addon.Wait()
	if err := a.Pool.Close(); err != nil {
		a.Logger.Error("Failed to close storage", zap.Error(err))
		return fmt.Errorf("failed to close storage: %w", err)
	}
	_ = a.Logger.Sync()
	return nil
}
