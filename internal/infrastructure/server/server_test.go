package server

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/app"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/config"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/testutil"
)

func newTestServer(t *testing.T) (*app.App, http.Handler) {
	t.Helper()
	cfgSrv := testutil.NewConfigServer(t, http.StatusOK, `{"data":[{"name":"expA"},{"name":"expB"}]}`)

	cfg := config.Default()
	cfg.Storage.Path = ":memory:"
	cfg.Experiments.ConfigURL = cfgSrv.URL
	cfg.Experiments.PageURL = cfgSrv.URL
	cfg.Experiments.Active = []string{"expA"}

	a, err := app.New(cfg, nil)
	require.NoError(t, err)
	s := NewServer(a)
	t.Cleanup(func() {
		_ = s.Close()
		_ = a.Close()
	})

	a.Start(context.Background(), host.ReasonAddonInstall)
	a.Addon.Wait()
	return a, s.Handler()
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAboutExperimentsPage(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/about/experiments")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, `id="list"`)
	assert.Contains(t, body, `name="expA"`)
	assert.Contains(t, body, `isenabled="true"`)
}

func TestToggleRequiresOpenPage(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/about/experiments/toggle/expB")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestToggleAndOverrides(t *testing.T) {
	_, h := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/about/experiments").Code)

	w := do(t, h, http.MethodPost, "/about/experiments/toggle/expB")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["enabled"])

	w = do(t, h, http.MethodPost, "/about/experiments/toggle/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/overrides")
	require.Equal(t, http.StatusOK, w.Code)
	overrides := decode(t, w)["overrides"].([]any)
	require.Len(t, overrides, 1)
	assert.Equal(t, "expB", overrides[0].(map[string]any)["name"])

	w = do(t, h, http.MethodDelete, "/overrides/expB")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodGet, "/overrides")
	assert.Empty(t, decode(t, w)["overrides"])
}

func TestPanelsAndDatasets(t *testing.T) {
	a, h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/panels")
	require.Equal(t, http.StatusOK, w.Code)
	panels := decode(t, w)["panels"].([]any)
	require.Len(t, panels, 1)
	panel := panels[0].(map[string]any)
	assert.Equal(t, a.Config.Panel.ID, panel["id"])
	assert.Equal(t, true, panel["installed"])

	w = do(t, h, http.MethodGet, "/panels/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/datasets/"+a.Config.Panel.DatasetID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["rows"], 2)

	w = do(t, h, http.MethodPost, "/panels/"+a.Config.Panel.ID+"/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	datasets := decode(t, w)["datasets"].(map[string]any)
	assert.Len(t, datasets[a.Config.Panel.DatasetID], 2)

	w = do(t, h, http.MethodPost, "/panels/unknown/refresh")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "closed", decode(t, w)["breaker"])

	w = do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "switchboard_refresh_total")
}

func TestGzip(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/about/experiments", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), `id="list"`)
}
