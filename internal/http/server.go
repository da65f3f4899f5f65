// Package http provides the HTTP API for boardd: the assembled board
// view, cache observability, and explicit invalidation.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clientview/boardd/internal/cache"
	"github.com/clientview/boardd/internal/service"
)

// Server provides HTTP endpoints for boardd.
type Server struct {
	echo   *echo.Echo
	boards *service.BoardService
	logger *zap.Logger
	config *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(boards *service.BoardService, logger *zap.Logger, cfg *Config) (*Server, error) {
	if boards == nil {
		return nil, fmt.Errorf("board service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8480,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:   e,
		boards: boards,
		logger: logger,
		config: cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/teams/:team/board", s.handleBoard)
	v1.GET("/cache/stats", s.handleCacheStats)
	v1.POST("/invalidate", s.handleInvalidate)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// InvalidateRequest is the request body for POST /api/v1/invalidate.
type InvalidateRequest struct {
	Event string `json:"event"`
	Team  string `json:"team,omitempty"`
}

// InvalidateResponse is the response body for POST /api/v1/invalidate.
type InvalidateResponse struct {
	Event string `json:"event"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleBoard serves the classified, counted board view for a team.
func (s *Server) handleBoard(c echo.Context) error {
	teamID := c.Param("team")
	if teamID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "team is required")
	}

	view, err := s.boards.Board(c.Request().Context(), teamID)
	if err != nil {
		s.logger.Error("failed to build board view",
			zap.String("team", teamID),
			zap.Error(err),
		)
		return echo.NewHTTPError(http.StatusBadGateway, "failed to load board data")
	}

	return c.JSON(http.StatusOK, view)
}

// handleCacheStats returns the cache hit/miss snapshot.
func (s *Server) handleCacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.boards.CacheStats())
}

// handleInvalidate applies a domain event to the cache. This is the
// explicit replacement for fire-and-forget invalidation broadcasts:
// mutating collaborators call it directly.
func (s *Server) handleInvalidate(c echo.Context) error {
	var req InvalidateRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid invalidate request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Event == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "event field is required")
	}

	if err := s.boards.Invalidate(cache.Event(req.Event), req.Team); err != nil {
		if errors.Is(err, cache.ErrUnknownEvent) {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown event %q", req.Event))
		}
		s.logger.Error("invalidation failed",
			zap.String("event", req.Event),
			zap.Error(err),
		)
		return echo.NewHTTPError(http.StatusInternalServerError, "invalidation failed")
	}

	return c.JSON(http.StatusOK, InvalidateResponse{Event: req.Event})
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
