package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Read-only stream/room views for dashboards
	s.echo.GET("/api/streams/:id", s.handleStream)
	s.echo.GET("/api/streams/:id/room", s.handleRoomStats)

	// The socket: identity is attached in-band via an auth message, or via
	// the optional token query parameter at connect time
	s.echo.GET("/ws", s.handleWebSocket)
}
