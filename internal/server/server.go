package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/snapcook/backend/config"
	"github.com/pageza/snapcook/backend/internal/api"
	"github.com/pageza/snapcook/backend/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger zerolog.Logger
}

// New builds the router around the given handlers. Every collaborator is
// constructed by the caller.
func New(cfg *config.Config, logger zerolog.Logger, handlers *api.Handlers) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// The rate limiter keys on ClientIP, so forwarded headers only count
	// when they come from a configured proxy.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn().Err(err).Msg("ignoring TRUSTED_PROXIES")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(
		middleware.Logger(logger),
		middleware.Metrics(),
		middleware.ErrorHandler(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	api.RegisterRoutes(router, handlers)

	return &Server{
		router: router,
		logger: logger,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			// No WriteTimeout: cooking replies stream for as long as the model talks.
			IdleTimeout: 120 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
