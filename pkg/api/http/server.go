package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aescanero/dagoc/internal/application/compiler"
	"github.com/aescanero/dagoc/pkg/api/websocket"
	"github.com/aescanero/dagoc/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP API server
type Server struct {
	router   *gin.Engine
	server   *http.Server
	compiler *compiler.Compiler
	gatherer prometheus.Gatherer
	stream   *websocket.Handler
	logger   *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Port     int
	Compiler *compiler.Compiler
	// Gatherer serves /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	// EventBus enables the event stream endpoint when set.
	EventBus ports.EventBus
	Logger   *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(cfg.Logger))
	router.Use(corsMiddleware())

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		router:   router,
		compiler: cfg.Compiler,
		gatherer: gatherer,
		logger:   cfg.Logger,
	}
	if cfg.EventBus != nil {
		s.stream = websocket.NewHandler(cfg.EventBus, cfg.Logger)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/graphs/:name/compile", s.handleCompile)
		v1.POST("/graphs/:name/validate", s.handleValidate)

		v1.GET("/bundles", s.handleListBundles)
		v1.GET("/bundles/:hash", s.handleGetBundle)
		v1.DELETE("/bundles/:hash", s.handleDeleteBundle)

		if s.stream != nil {
			v1.GET("/events", s.stream.HandleEventStream)
		}
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
