package http

import (
	"errors"
	"net/http"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/addon"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/app"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/tracing"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/browser"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/settings"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/registry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	app    *app.App
	tracer *tracing.Tracer
}

// NewHandlers creates a new handler set
func NewHandlers(a *app.App, tracer *tracing.Tracer) *Handlers {
	return &Handlers{app: a, tracer: tracer}
}

// Root reports the service identity.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "switchboard-experiments",
		"addon":   h.app.Data,
	})
}

// Health reports breaker and scheduler state.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"breaker":   h.app.Client.BreakerState().String(),
		"scheduler": h.app.Scheduler.Stats(),
		"panels":    h.app.Panels.List(),
	})
}

// AboutExperiments opens a fresh about:experiments page and serves it.
func (h *Handlers) AboutExperiments(c *gin.Context) {
	page, err := h.app.Pages.Open(c.Request.Context(), addon.AboutPageDescription)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	body, err := page.HTML()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

// ToggleExperiment clicks a row of the open page.
func (h *Handlers) ToggleExperiment(c *gin.Context) {
	name := c.Param("name")

	page, ok := h.app.Pages.Current(addon.AboutPageDescription)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "about:experiments is not open"})
		return
	}

	enabled, err := page.Click(c.Request.Context(), name)
	if errors.Is(err, browser.ErrUnknownExperiment) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": name, "enabled": enabled})
}

// ListPanels lists registered panels.
func (h *Handlers) ListPanels(c *gin.Context) {
	ids := h.app.Panels.List()
	panels := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		if p, ok := h.app.Panels.Get(id); ok {
			panels = append(panels, panelJSON(p))
		}
	}
	c.JSON(http.StatusOK, gin.H{"panels": panels})
}

// GetPanel describes one panel.
func (h *Handlers) GetPanel(c *gin.Context) {
	p, ok := h.app.Panels.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "panel not found"})
		return
	}
	c.JSON(http.StatusOK, panelJSON(p))
}

// RefreshPanel triggers the panel's list view refresh, as a pull-to-refresh
// in the shell would, then returns the dataset it shows.
func (h *Handlers) RefreshPanel(c *gin.Context) {
	id := c.Param("id")
	span, ctx := h.tracer.StartSpan(c.Request.Context(), "panel.refresh")
	span.SetTag("panel", id)
	defer func() {
		span.Finish()
		h.tracer.Submit(span)
	}()

	err := h.app.Panels.Refresh(ctx, id)
	switch {
	case errors.Is(err, registry.ErrNotRegistered):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		span.SetError(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	p, _ := h.app.Panels.Get(id)
	datasets := gin.H{}
	for _, v := range p.Options.Views {
		rows, err := h.app.Rows.Rows(ctx, v.Dataset)
		if err != nil {
			h.app.Logger.Error("Failed to read dataset", zap.String("dataset", v.Dataset), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		datasets[v.Dataset] = rows
	}
	c.JSON(http.StatusOK, gin.H{"panel": id, "datasets": datasets})
}

// GetDataset returns the rows stored for a dataset.
func (h *Handlers) GetDataset(c *gin.Context) {
	id := c.Param("id")
	rows, err := h.app.Rows.Rows(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": id, "rows": rows})
}

// ListOverrides returns every stored override.
func (h *Handlers) ListOverrides(c *gin.Context) {
	overrides, err := h.app.Settings.Overrides(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if overrides == nil {
		overrides = []settings.Override{}
	}
	c.JSON(http.StatusOK, gin.H{"overrides": overrides})
}

// ClearOverride drops one override.
func (h *Handlers) ClearOverride(c *gin.Context) {
	name := c.Param("name")
	if err := h.app.Settings.ClearOverride(c.Request.Context(), name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, settings.ErrEmptyName) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func panelJSON(p registry.Panel) gin.H {
	views := make([]gin.H, 0, len(p.Options.Views))
	for _, v := range p.Options.Views {
		views = append(views, gin.H{
			"type":        v.Type,
			"dataset":     v.Dataset,
			"refreshable": v.OnRefresh != nil,
		})
	}
	return gin.H{
		"id":        p.ID,
		"title":     p.Options.Title,
		"installed": p.Installed,
		"updates":   p.Updates,
		"views":     views,
	}
}
