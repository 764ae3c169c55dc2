// Package server exposes the WebSocket endpoint plus the small HTTP surface
// around it: health probes, metrics, and a read-only room stats API.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/streampulse/internal/config"
	"github.com/pscheid92/streampulse/internal/hub"
	"github.com/pscheid92/streampulse/internal/session"
)

// Pinger is the minimal health-check surface of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	hub         *hub.Hub
	sessionDeps session.Deps

	postgres  Pinger
	redis     Pinger // nil when Redis is not configured
	startTime time.Time
}

func NewServer(cfg *config.Config, h *hub.Hub, deps session.Deps, postgres, redis Pinger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:        e,
		config:      cfg,
		hub:         h,
		sessionDeps: deps,
		postgres:    postgres,
		redis:       redis,
		startTime:   time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	log.Printf("Starting server on port %s", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
