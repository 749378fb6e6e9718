// Package api exposes the outcome classifier over HTTP.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/screening-outcome-classifier/internal/domain"
	"github.com/screening-outcome-classifier/internal/middleware"
	"github.com/screening-outcome-classifier/internal/service"
)

// Version is reported by the health endpoint.
var Version = "dev"

// healthTimeout bounds the store ping made by the health endpoint.
const healthTimeout = 2 * time.Second

// Server represents the HTTP server
type Server struct {
	configs domain.ConfigManager
	// config is the configuration the server was built with. Listener,
	// middleware and cache settings are fixed at construction; windows and the
	// default report format are read from configs on every request.
	config  *domain.Config
	logger  *logrus.Logger
	engine  *service.OutcomeEngine
	summary *service.SummaryService
	store   domain.ResultStore
	cache   *reportCache
	router  *gin.Engine
	server  *http.Server
}

// NewServer creates a new HTTP server instance. store may be nil, in which
// case the run endpoints answer 503.
func NewServer(configs domain.ConfigManager, logger *logrus.Logger, engine *service.OutcomeEngine, summary *service.SummaryService, store domain.ResultStore) (*Server, error) {
	cfg := configs.GetConfig()
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	if cfg.Server.RateLimit > 0 {
		router.Use(middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst).Middleware())
	}

	s := &Server{
		configs: configs,
		config:  cfg,
		logger:  logger,
		engine:  engine,
		summary: summary,
		store:   store,
		router:  router,
	}

	if cfg.Cache.Enabled {
		cache, err := newReportCache(cfg.Cache.MaxItems)
		if err != nil {
			return nil, fmt.Errorf("failed to create report cache: %w", err)
		}
		s.cache = cache
	}

	s.setupRoutes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/classify", s.handleClassify)
		v1.POST("/summarise", s.handleSummarise)
		v1.GET("/runs", s.handleListRuns)
		v1.GET("/runs/:id", s.handleGetRun)
		v1.DELETE("/runs/:id", s.handleDeleteRun)
	}
}

// handleHealth handles health check requests. An unreachable store makes
// the service unhealthy.
func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":        "healthy",
		"timestamp":     time.Now().UTC(),
		"version":       Version,
		"store":         s.config.Store.Driver,
		"store_enabled": s.store != nil,
		"cached":        s.cache.len(),
	}

	status := http.StatusOK
	if s.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := s.store.Health(ctx); err != nil {
			s.logger.WithError(err).Warn("Run store health check failed")
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["store_error"] = err.Error()
		}
	}

	c.JSON(status, body)
}

// errorResponse writes a JSON error carrying the correlation ID.
func (s *Server) errorResponse(c *gin.Context, status int, err error) {
	body := gin.H{
		"error":          err.Error(),
		"correlation_id": c.GetString(middleware.CorrelationIDKey),
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		body["field"] = validationErr.Field
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// readBody reads the whole request body, mapping an oversized body to 413.
func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(c.Request.Body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.errorResponse(c, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit))
			return nil, false
		}
		s.errorResponse(c, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err))
		return nil, false
	}
	return buf.Bytes(), true
}
