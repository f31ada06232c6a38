// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GajendraSingh33/fraud-detection-system/internal/config"
	"github.com/GajendraSingh33/fraud-detection-system/internal/feed"
	"github.com/GajendraSingh33/fraud-detection-system/internal/health"
	"github.com/GajendraSingh33/fraud-detection-system/internal/idgen"
	"github.com/GajendraSingh33/fraud-detection-system/internal/logging"
	"github.com/GajendraSingh33/fraud-detection-system/internal/metrics"
	"github.com/GajendraSingh33/fraud-detection-system/internal/pipeline"
	"github.com/GajendraSingh33/fraud-detection-system/internal/ratelimit"
	"github.com/GajendraSingh33/fraud-detection-system/internal/realtime"
	"github.com/GajendraSingh33/fraud-detection-system/internal/scoring"
	"github.com/GajendraSingh33/fraud-detection-system/internal/security"
	"github.com/GajendraSingh33/fraud-detection-system/internal/stats"
	"github.com/GajendraSingh33/fraud-detection-system/internal/traces"
	"github.com/GajendraSingh33/fraud-detection-system/internal/transaction"
	"github.com/GajendraSingh33/fraud-detection-system/internal/validation"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg         *config.Config
	scorer      *scoring.Scorer
	stats       *stats.Aggregator
	hub         *realtime.Hub
	pipe        *pipeline.Pipeline
	feed        *feed.Runner
	gen         *transaction.Generator
	healthReg   *health.Registry
	rateLimiter *ratelimit.Limiter
	router      *gin.Engine
	httpSrv     *http.Server
	logger      *slog.Logger
	cancelRun   context.CancelFunc // cancels background goroutines started in Run
	traceStop   func(context.Context) error

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGenerator sets a custom transaction generator (for testing)
func WithGenerator(gen *transaction.Generator) Option {
	return func(s *Server) {
		s.gen = gen
	}
}

// New creates a new server instance. The ensemble is trained before
// the server accepts traffic; a training failure is fatal.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	// Apply options first (may set generator/logger)
	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()

	traceStop, err := traces.Init(ctx, cfg.OTLPEndpoint, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	s.traceStop = traceStop

	if s.gen == nil {
		s.gen = transaction.NewDefaultGenerator()
	}

	s.scorer = scoring.New(cfg.SupervisedWeight)
	s.stats = stats.New()

	// Hub replays through the pipeline; the closure resolves after
	// both are constructed.
	s.hub = realtime.NewHub(s.logger, func() []realtime.Envelope {
		return s.pipe.Replay()
	})
	s.pipe = pipeline.New(s.scorer, s.stats, s.hub, s.logger)

	if cfg.FeedEnabled {
		s.feed = feed.NewRunner(s.pipe, s.gen, cfg.FeedMinInterval, cfg.FeedMaxInterval, s.logger)
	}

	// Train before serving; an untrained scorer can answer nothing.
	if err := s.train(ctx); err != nil {
		return nil, fmt.Errorf("initial training failed: %w", err)
	}
	s.logger.Info("initial model training complete", "samples", cfg.TrainingSamples)

	s.healthReg = health.NewRegistry()
	s.healthReg.Register("model", func(ctx context.Context) health.Status {
		st := health.Status{Name: "model", Healthy: s.scorer.Trained()}
		if !st.Healthy {
			st.Detail = "model not trained"
		}
		return st
	})
	if s.feed != nil {
		s.healthReg.Register("feed", func(ctx context.Context) health.Status {
			st := health.Status{Name: "feed", Healthy: true}
			if s.ready.Load() && !s.feed.Running() {
				st.Healthy = false
				st.Detail = "feed loop not running"
			}
			return st
		})
	}

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// train fits a fresh ensemble on a generated labeled corpus and pushes
// the resulting quality into stats and metrics.
func (s *Server) train(ctx context.Context) error {
	data := s.gen.LabeledSet(s.cfg.TrainingSamples)
	quality, err := s.scorer.Retrain(ctx, data)
	if err != nil {
		metrics.RetrainsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.RetrainsTotal.WithLabelValues("success").Inc()
	metrics.ModelAccuracy.Set(quality.Accuracy)
	metrics.ModelPrecision.Set(quality.Precision)
	metrics.ModelRecall.Set(quality.Recall)
	s.stats.SetModelQuality(quality)
	return nil
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS (the dashboard may be served from anywhere)
	s.router.Use(security.CORSMiddleware([]string{"*"}))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.RequestsPerMinute = s.cfg.RateLimitRPM
	s.rateLimiter = ratelimit.New(limiterCfg)
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = idgen.Hex(8)
		}

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	s.router.GET("/", s.infoHandler)

	// WebSocket for real-time streaming
	s.router.GET("/ws", func(c *gin.Context) {
		s.hub.HandleWebSocket(c.Writer, c.Request)
	})

	s.router.POST("/analyze", s.analyzeHandler)
	s.router.GET("/stats", s.statsHandler)
	s.router.GET("/model", s.modelHandler)
	s.router.POST("/retrain", s.retrainHandler)
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server with graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	// Create a cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRun = cancel

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", "port", s.cfg.Port)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start realtime hub
	go s.hub.Run(runCtx)

	// Start synthetic feed
	if s.feed != nil {
		go s.feed.Start(runCtx)
	}

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown stops background goroutines and drains in-flight requests.
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for all background goroutines (hub, feed)
	if s.cancelRun != nil {
		s.cancelRun()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	if s.feed != nil {
		s.feed.Stop()
		s.logger.Info("transaction feed stopped")
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	if s.traceStop != nil {
		if err := s.traceStop(ctx); err != nil {
			s.logger.Error("trace exporter shutdown error", "error", err)
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}
