package addon

import (
	"context"
	"sync"
	"time"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/experiments"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/monitoring"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/shared/id"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// About page registration.
const (
	AboutPageDescription = "about:experiments"
	AboutPageContract    = "@mozilla.org/network/protocol/about;1?what=experiments"
)

// AboutPageClassID identifies the about:experiments page factory.
var AboutPageClassID = uuid.MustParse("3C8B4060-1478-11E6-B350-53C63FB77F5E")

// Lifecycle is the set of hooks a host drives.
type Lifecycle interface {
	OnInstall(ctx context.Context)
	OnUpdate(ctx context.Context)
	OnUninstall(ctx context.Context)
	OnTick(ctx context.Context)
}

// Options configures the add-on.
type Options struct {
	PanelID      string
	DatasetID    string
	Title        string
	ConfigURL    string
	SyncInterval time.Duration
}

// Deps are the collaborators built by the caller.
type Deps struct {
	// Fetcher downloads the sync-mode configuration.
	Fetcher *experiments.Fetcher
	Sync    *experiments.OverrideSync
	// Pages creates about:experiments pages; nil skips page registration.
	Pages   host.PageFactory
	Metrics *monitoring.Metrics
	Logger  *logging.Logger
}

// Addon implements the bootstrap entry points and Lifecycle.
type Addon struct {
	host      host.Host
	opts      Options
	fetcher   *experiments.Fetcher
	sync      *experiments.OverrideSync
	refresher *experiments.Refresher
	pages     host.PageFactory
	metrics   *monitoring.Metrics
	logger    *logging.Logger

	wg sync.WaitGroup
}

var _ Lifecycle = (*Addon)(nil)

// New creates the add-on. Nothing is registered until Startup.
func New(h host.Host, opts Options, deps Deps) *Addon {
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = time.Hour
	}
	logger := logging.OrNop(deps.Logger)

	return &Addon{
		host:    h,
		opts:    opts,
		fetcher: deps.Fetcher,
		sync:    deps.Sync,
		refresher: experiments.NewRefresher(deps.Fetcher, deps.Sync, h.Storage, experiments.RefresherOptions{
			DatasetID: opts.DatasetID,
			URL:       opts.ConfigURL,
			Metrics:   deps.Metrics,
			Logger:    logger,
		}),
		pages:   deps.Pages,
		metrics: deps.Metrics,
		logger:  logger,
	}
}

// Startup is called when the add-on is loaded.
func (a *Addon) Startup(ctx context.Context, data host.AddonData, reason host.Reason) {
	a.logger.Info("startup", zap.Stringer("reason", reason), zap.String("version", data.Version))

	if a.pages != nil && a.host.Pages != nil {
		if err := a.host.Pages.RegisterFactory(AboutPageClassID, AboutPageDescription, AboutPageContract, a.pages); err != nil {
			a.logger.Error("Error registering about page", zap.Error(err))
		}
	}

	if err := a.host.Panels.Register(a.opts.PanelID, a.PanelOptions); err != nil {
		a.logger.Error("Error registering panel", zap.String("panel", a.opts.PanelID), zap.Error(err))
	}

	switch reason {
	case host.ReasonAddonInstall, host.ReasonAddonEnable:
		a.background(ctx, a.OnInstall)
	case host.ReasonAddonUpgrade, host.ReasonAddonDowngrade:
		a.background(ctx, a.OnUpdate)
	}

	if err := a.host.Scheduler.AddPeriodicSync(a.opts.DatasetID, a.opts.SyncInterval, a.OnTick); err != nil {
		a.logger.Error("Error scheduling periodic sync", zap.String("dataset", a.opts.DatasetID), zap.Error(err))
	}

	a.logger.Info("startup finished")
}

// Shutdown is called when the add-on is unloaded. Teardown for uninstall
// and disable runs inline so it completes before the host moves on.
func (a *Addon) Shutdown(ctx context.Context, data host.AddonData, reason host.Reason) {
	a.logger.Info("shutdown", zap.Stringer("reason", reason))

	if a.pages != nil && a.host.Pages != nil {
		if err := a.host.Pages.UnregisterFactory(AboutPageClassID); err != nil {
			a.logger.Warn("Error unregistering about page", zap.Error(err))
		}
	}

	if reason == host.ReasonAddonUninstall || reason == host.ReasonAddonDisable {
		a.OnUninstall(ctx)
	}

	if err := a.host.Panels.Unregister(a.opts.PanelID); err != nil {
		a.logger.Warn("Error unregistering panel", zap.String("panel", a.opts.PanelID), zap.Error(err))
	}
}

// Install is called once before the first Startup after installation.
func (a *Addon) Install(ctx context.Context, data host.AddonData, reason host.Reason) {
	a.logger.Info("install", zap.Stringer("reason", reason))
}

// Uninstall is called once after the last Shutdown before removal.
func (a *Addon) Uninstall(ctx context.Context, data host.AddonData, reason host.Reason) {
	a.logger.Info("uninstall", zap.Stringer("reason", reason))
}

// OnInstall installs the panel and fills its dataset.
func (a *Addon) OnInstall(ctx context.Context) {
	if err := a.host.Panels.Install(a.opts.PanelID); err != nil {
		a.logger.Error("Error installing panel", zap.Error(err))
	}
	a.refresh(ctx)
	a.logger.Info("installed/enabled")
}

// OnUpdate refreshes the panel definition and its dataset.
func (a *Addon) OnUpdate(ctx context.Context) {
	if err := a.host.Panels.Update(a.opts.PanelID); err != nil {
		a.logger.Error("Error updating panel", zap.Error(err))
	}
	a.logger.Info("upgraded/downgraded")
	a.refresh(ctx)
}

// OnUninstall removes the panel, empties the dataset and clears overrides.
// Each step runs even if an earlier one failed.
func (a *Addon) OnUninstall(ctx context.Context) {
	if err := a.host.Panels.Uninstall(a.opts.PanelID); err != nil {
		a.logger.Error("Error uninstalling panel", zap.Error(err))
	}
	_ = a.refresher.DeleteDataset(ctx)
	a.ClearOverrides(ctx)
}

// OnTick is the periodic sync callback.
func (a *Addon) OnTick(ctx context.Context) {
	a.refresh(ctx)
}

// PanelOptions describes the Experiments panel to the host.
func (a *Addon) PanelOptions() host.PanelOptions {
	a.logger.Debug("_optionsCallback")
	return host.PanelOptions{
		Title: a.opts.Title,
		Views: []host.View{{
			Type:      host.ViewList,
			Dataset:   a.opts.DatasetID,
			OnRefresh: a.refresh,
		}},
	}
}

// Refresh runs one sync cycle and reports its result. Lifecycle hooks use
// the same cycle but discard the error, which is already logged.
func (a *Addon) Refresh(ctx context.Context) ([]host.Row, error) {
	return a.refresher.Refresh(ctx)
}

// ClearOverrides fetches the configuration and clears the host override of
// every experiment it lists. Returns how many overrides were cleared.
func (a *Addon) ClearOverrides(ctx context.Context) int {
	log := a.logger.With(zap.Stringer("cycle", id.NewCycleID(id.ClearPrefix)))

	descriptors, err := a.fetcher.Fetch(ctx, a.opts.ConfigURL)
	if err != nil {
		a.metrics.RecordRefresh("clear", experiments.Outcome(err))
		log.Error("Error fetching configuration to clear overrides", zap.Error(err))
		return 0
	}

	log.Debug("_clearOverridesFromConfiguration", zap.Int("experiments", len(descriptors)))
	cleared := a.sync.ClearOverrides(ctx, descriptors)
	a.metrics.RecordRefresh("clear", monitoring.OutcomeDone)
	return cleared
}

// Wait blocks until background work started by Startup has finished.
func (a *Addon) Wait() {
	a.wg.Wait()
}

func (a *Addon) refresh(ctx context.Context) {
	_, _ = a.refresher.Refresh(ctx)
}

// background runs fn detached from ctx cancellation; issued cycles are not
// cancellable.
func (a *Addon) background(ctx context.Context, fn func(context.Context)) {
	bg := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn(bg)
	}()
}
