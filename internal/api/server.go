package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hcc-raf-server/internal/domain"
	"github.com/hcc-raf-server/internal/health"
	"github.com/hcc-raf-server/internal/middleware"
	"github.com/hcc-raf-server/internal/service"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const defaultShutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	calculator    *service.Calculator
	logger        *logrus.Logger
	checker       *health.Checker
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, calculator *service.Calculator, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger(logger.Out))
	router.Use(corsMiddleware())
	if cfg.Server.RequestTimeout > 0 {
		router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	}

	server := &Server{
		configManager: configManager,
		calculator:    calculator,
		logger:        logger,
		router:        router,
	}

	// Setup routes
	server.setupRoutes(middleware.NewAuthenticator(cfg.Auth))

	return server
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves HTTP on an existing listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	cfg := s.configManager.GetServerConfig()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", listener.Addr().String()).Info("HTTP server listening")
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes(auth middleware.Authenticator) {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/health/ready", s.handleReady)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/model", s.handleModel)

		calc := v1.Group("", middleware.RequireAuth(auth, s.logger))
		calc.POST("/calculate-raf", s.handleCalculateRAF)
		calc.POST("/calculate-hcc", s.handleCalculateHCC)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	profile := s.calculator.Formatter().Profile()
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   Version,
		"model":     profile.Model,
		"year":      profile.Year,
	})
}

// SetHealthChecker sets the checker behind /health/ready. Without one the endpoint
// always reports healthy.
func (s *Server) SetHealthChecker(checker *health.Checker) {
	s.checker = checker
}

// handleReady runs the component checks; 503 when a critical component is down
func (s *Server) handleReady(c *gin.Context) {
	if s.checker == nil {
		c.JSON(http.StatusOK, &health.Report{Status: health.StateHealthy, Timestamp: time.Now().UTC(), Components: []health.Component{}})
		return
	}

	report := s.checker.Check(c.Request.Context())
	status := http.StatusOK
	if report.Status == health.StateUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// handleModel reports the active model-year profile
func (s *Server) handleModel(c *gin.Context) {
	profile := s.calculator.Formatter().Profile()
	c.JSON(http.StatusOK, gin.H{
		"model":                        profile.Model,
		"year":                         profile.Year,
		"norm_factor":                  profile.NormFactor,
		"norm_factor_source":           profile.NormFactorSource,
		"excluded_interaction_markers": profile.ExcludedInteractionMarkers,
		"labels":                       profile.Labels.Stats(),
	})
}

// handleCalculateRAF handles multi-condition requests
func (s *Server) handleCalculateRAF(c *gin.Context) {
	var req domain.RAFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp, err := s.calculator.CalculateRAF(c.Request.Context(), &req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleCalculateHCC handles single-condition requests
func (s *Server) handleCalculateHCC(c *gin.Context) {
	var req domain.HCCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp, err := s.calculator.CalculateHCC(c.Request.Context(), &req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// respondError writes the {"error": message} contract. Validation and engine failures
// are client errors; an unavailable engine is a 503.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, domain.ErrEngineUnavailable) {
		status = http.StatusServiceUnavailable
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, "+middleware.CorrelationIDHeader)
		c.Header("Access-Control-Expose-Headers", "Content-Length, "+middleware.CorrelationIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
