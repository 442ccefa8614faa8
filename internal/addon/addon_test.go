package addon

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/experiments"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/http/client"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/storage"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	panelID   = "experiments-panel"
	datasetID = "experiments-dataset"
	config    = `{"data":[{"name":"expA"},{"name":"expB"}]}`
)

type harness struct {
	server    *testutil.ConfigServer
	panels    *testutil.MockPanels
	pages     *testutil.MockPages
	overrides *testutil.MockOverrides
	scheduler *testutil.ManualScheduler
	store     *storage.Memory
	addon     *Addon
}

func newHarness(t *testing.T, status int, body string) *harness {
	t.Helper()
	h := &harness{
		server:    testutil.NewConfigServer(t, status, body),
		panels:    testutil.NewMockPanels(t),
		pages:     testutil.NewMockPages(t),
		overrides: testutil.NewMockOverrides(t),
		scheduler: testutil.NewManualScheduler(),
		store:     storage.NewMemory(),
	}
	messenger := testutil.NewMockMessenger(t, `["expA"]`)

	fetcher := experiments.NewFetcher(client.NewClient(client.DefaultOptions()), experiments.FetcherOptions{CacheBust: true})
	sync := experiments.NewOverrideSync(messenger, h.overrides, nil, nil)

	h.addon = New(host.Host{
		Panels:    h.panels,
		Scheduler: h.scheduler,
		Storage:   h.store,
		Messenger: messenger,
		Overrides: h.overrides,
		Pages:     h.pages,
	}, Options{
		PanelID:      panelID,
		DatasetID:    datasetID,
		Title:        "Switchboard Experiments",
		ConfigURL:    h.server.URL + "/records",
		SyncInterval: 30 * time.Minute,
	}, Deps{
		Fetcher: fetcher,
		Sync:    sync,
		Pages:   func() host.Page { return nil },
	})
	return h
}

func (h *harness) rows(t *testing.T) []host.Row {
	t.Helper()
	rows, err := h.store.Rows(context.Background(), datasetID)
	require.NoError(t, err)
	return rows
}

func TestStartupInstall(t *testing.T) {
	h := newHarness(t, http.StatusOK, config)

	h.addon.Startup(context.Background(), host.AddonData{Version: "1.0"}, host.ReasonAddonInstall)
	h.addon.Wait()

	h.panels.AssertCalled(t, "Register", panelID, mock.Anything)
	h.panels.AssertCalled(t, "Install", panelID)
	h.pages.AssertCalled(t, "RegisterFactory", AboutPageClassID, AboutPageDescription, AboutPageContract, mock.Anything)

	interval, ok := h.scheduler.Interval(datasetID)
	require.True(t, ok)
	assert.Equal(t, 30*time.Minute, interval)

	assert.Equal(t, []host.Row{
		{URL: experiments.DefaultRowURL, Title: "expA", BackgroundColor: experiments.EnabledColor},
		{URL: experiments.DefaultRowURL, Title: "expB", BackgroundColor: experiments.DisabledColor},
	}, h.rows(t))
	assert.Contains(t, h.server.LastRequestURI(), "/records?")
}

func TestStartupAppStartupDoesNotRefresh(t *testing.T) {
	h := newHarness(t, http.StatusOK, config)

	h.addon.Startup(context.Background(), host.AddonData{}, host.ReasonAppStartup)
	h.addon.Wait()

	assert.Empty(t, h.store.Ops())
	assert.Zero(t, h.server.Hits())
	h.panels.AssertNotCalled(t, "Install", mock.Anything)

	require.True(t, h.scheduler.Tick(context.Background(), datasetID))
	assert.Len(t, h.rows(t), 2)
}

func TestStartupUpgrade(t *testing.T) {
	for _, reason := range []host.Reason{host.ReasonAddonUpgrade, host.ReasonAddonDowngrade} {
		t.Run(reason.String(), func(t *testing.T) {
			h := newHarness(t, http.StatusOK, config)

			h.addon.Startup(context.Background(), host.AddonData{}, reason)
			h.addon.Wait()

			h.panels.AssertCalled(t, "Update", panelID)
			assert.Len(t, h.rows(t), 2)
		})
	}
}

func TestStartupBackgroundSurvivesCancel(t *testing.T) {
	h := newHarness(t, http.StatusOK, config)
	ctx, cancel := context.WithCancel(context.Background())

	h.addon.Startup(ctx, host.AddonData{}, host.ReasonAddonEnable)
	cancel()
	h.addon.Wait()

	assert.Len(t, h.rows(t), 2)
}

func TestStartupFetchFailure(t *testing.T) {
	h := newHarness(t, http.StatusNotFound, "")
	previous := []host.Row{{URL: experiments.DefaultRowURL, Title: "kept"}}
	h.store.Put(datasetID, previous)

	h.addon.Startup(context.Background(), host.AddonData{}, host.ReasonAddonInstall)
	h.addon.Wait()

	assert.Empty(t, h.store.Ops())
	assert.Equal(t, previous, h.rows(t))
}

func TestShutdownUninstall(t *testing.T) {
	h := newHarness(t, http.StatusOK, config)
	h.store.Put(datasetID, []host.Row{{Title: "old"}})

	h.addon.Shutdown(context.Background(), host.AddonData{}, host.ReasonAddonUninstall)

	h.panels.AssertCalled(t, "Uninstall", panelID)
	h.panels.AssertCalled(t, "Unregister", panelID)
	h.pages.AssertCalled(t, "UnregisterFactory", AboutPageClassID)
	h.overrides.AssertCalled(t, "ClearOverride", mock.Anything, "expA")
	h.overrides.AssertCalled(t, "ClearOverride", mock.Anything, "expB")
	assert.Empty(t, h.rows(t))
}

func TestShutdownAppShutdownKeepsData(t *testing.T) {
	h := newHarness(t, http.StatusOK, config)
	h.store.Put(datasetID, []host.Row{{Title: "old"}})

	h.addon.Shutdown(context.Background(), host.AddonData{}, host.ReasonAppShutdown)

	h.panels.AssertCalled(t, "Unregister", panelID)
	h.panels.AssertNotCalled(t, "Uninstall", mock.Anything)
	h.overrides.AssertNotCalled(t, "ClearOverride", mock.Anything, mock.Anything)
	assert.Len(t, h.rows(t), 1)
}

func TestOnUninstallContinuesAfterFetchFailure(t *testing.T) {
	h := newHarness(t, http.StatusServiceUnavailable, "")
	h.store.Put(datasetID, []host.Row{{Title: "old"}})

	h.addon.OnUninstall(context.Background())

	assert.Empty(t, h.rows(t))
	h.overrides.AssertNotCalled(t, "ClearOverride", mock.Anything, mock.Anything)
}

func TestPanelOptions(t *testing.T) {
	h := newHarness(t, http.StatusOK, config)

	opts := h.addon.PanelOptions()
	assert.Equal(t, "Switchboard Experiments", opts.Title)
	require.Len(t, opts.Views, 1)
	assert.Equal(t, host.ViewList, opts.Views[0].Type)
	assert.Equal(t, datasetID, opts.Views[0].Dataset)

	opts.Views[0].OnRefresh(context.Background())
	assert.Len(t, h.rows(t), 2)
}

func TestClearOverridesCount(t *testing.T) {
	h := newHarness(t, http.StatusOK, config)
	assert.Equal(t, 2, h.addon.ClearOverrides(context.Background()))
}

func TestDefaultSyncInterval(t *testing.T) {
	a := New(host.Host{Storage: storage.NewMemory()}, Options{}, Deps{})
	assert.Equal(t, time.Hour, a.opts.SyncInterval)
}
