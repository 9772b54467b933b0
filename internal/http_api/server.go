package http_api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promoworks/dispensa/internal/config"
	"github.com/promoworks/dispensa/internal/models"
	"github.com/promoworks/dispensa/pkg/logger"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second

	// SessionCookieName carries the browser-session claim identity.
	SessionCookieName = "coupon_session"
)

// HTTPServer is the HTTP server struct that will serve the API
type HTTPServer struct {
	// logger is the logger instance
	logger *logger.Logger

	// router is the HTTP router
	router *gin.Engine
	// config drives the port, CORS, rate limits and cookie behavior
	config *config.Config

	// server is the underlying HTTP server
	server *http.Server

	// dispensa is the main application struct
	dispensa models.DispensaI

	// limiters tracks per-client request budgets
	limiters *limiterStore
	// stop ends background maintenance on shutdown
	stop chan struct{}
}

// corsMiddleware adds CORS headers to all responses, echoing only origins the
// configuration allows. Cookies ride on these endpoints, so the wildcard is
// only written when no Origin header is present.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowAll && origin == "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if allowAll || allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(dispensa models.DispensaI, config *config.Config, logger *logger.Logger) models.APIServer {
	router := gin.Default()

	// Add CORS middleware
	router.Use(corsMiddleware(config.AllowedOrigins))

	limiters := newLimiterStore(config.RateLimitRPS, config.RateLimitBurst)
	router.Use(rateLimitMiddleware(limiters))

	server := &HTTPServer{
		router:   router,
		config:   config,
		dispensa: dispensa,
		logger:   logger,
		limiters: limiters,
		stop:     make(chan struct{}),
	}
	limiters.startJanitor(server.stop)

	// Define routes
	server.routes()

	return server
}

// Start starts the HTTP server
func (s *HTTPServer) Start() {
	addr := fmt.Sprintf("0.0.0.0:%v", s.config.APIPort)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	s.logger.Info("Starting HTTP server", "address", addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Fatal("Failed to start the HTTP server: ", err)
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *HTTPServer) Shutdown() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server shut down successfully")
	return nil
}
