package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	handlers "github.com/idiotmax/Addon-Switchboard-Experiments/internal/api/http"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/api/middleware"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/app"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/monitoring"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/tracing"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	app     *app.App
	router  *gin.Engine
	handler http.Handler
	tracer  *tracing.Tracer
	http    *http.Server
}

// NewServer builds the router for a.
func NewServer(a *app.App) *Server {
	cfg := a.Config
	logger := a.Logger

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	tracer := tracing.New("switchboard", logger)

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(a.Metrics))
	router.Use(middleware.CORS(middleware.CORSFromOrigins(cfg.CORS.AllowedOrigins)))
	if cfg.Server.RateLimit > 0 {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.Server.RateLimit),
			zap.Int("burst", cfg.Server.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RateLimit,
			Burst:             cfg.Server.Burst,
		}))
	}

	h := handlers.NewHandlers(a, tracer)

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	// about:experiments
	router.GET("/about/experiments", h.AboutExperiments)
	router.POST("/about/experiments/toggle/:name", h.ToggleExperiment)

	// Home panels and their datasets
	router.GET("/panels", h.ListPanels)
	router.GET("/panels/:id", h.GetPanel)
	router.POST("/panels/:id/refresh", h.RefreshPanel)
	router.GET("/datasets/:id", h.GetDataset)

	// Overrides
	router.GET("/overrides", h.ListOverrides)
	router.DELETE("/overrides/:name", h.ClearOverride)

	return &Server{
		app:     a,
		router:  router,
		handler: gzhttp.GzipHandler(router),
		tracer:  tracer,
	}
}

// Handler returns the compressed router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.app.Config.Server
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.app.Logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.app.Logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Close releases the tracer.
func (s *Server) Close() error {
	s.tracer.Close()
	return nil
}
