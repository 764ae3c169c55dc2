package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/streampulse/internal/adapter/postgres"
	"github.com/pscheid92/streampulse/internal/adapter/redis"
	"github.com/pscheid92/streampulse/internal/auth"
	"github.com/pscheid92/streampulse/internal/config"
	"github.com/pscheid92/streampulse/internal/domain"
	"github.com/pscheid92/streampulse/internal/hub"
	"github.com/pscheid92/streampulse/internal/interaction"
	"github.com/pscheid92/streampulse/internal/logging"
	"github.com/pscheid92/streampulse/internal/registry"
	"github.com/pscheid92/streampulse/internal/relay"
	"github.com/pscheid92/streampulse/internal/rooms"
	"github.com/pscheid92/streampulse/internal/server"
	"github.com/pscheid92/streampulse/internal/session"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Failed to ping Redis", "error", err)
		os.Exit(1)
	}

	return client
}

func runGracefulShutdown(srv *server.Server, coordinator *rooms.Coordinator, h *hub.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		coordinator.Stop()
		h.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	streamRepo := postgres.NewStreamRepo(pool)
	userRepo := postgres.NewUserRepo(pool)

	h := hub.New(cfg.MaxClientsPerStream)

	// Redis is optional: without it, room events stay process-local.
	var emitter domain.Emitter = h
	var redisClient *redis.Client
	var redisPinger server.Pinger
	if cfg.RedisURL != "" {
		redisClient = setupRedis(cfg)
		defer func() { _ = redisClient.Close() }()
		emitter = redis.NewEventMirror(h, redisClient, slog.Default())
		redisPinger = redisClient
	}

	reg := registry.New(userRepo)
	coordinator := rooms.New(emitter, reg, h, clock, cfg.PublishRequestTTL)
	arbiter := auth.NewStreamArbiter(streamRepo, slog.Default())

	deps := session.Deps{
		Registry:     reg,
		Transport:    h,
		Coordinator:  coordinator,
		Interactions: interaction.NewStore(emitter, clock, cfg.LikeMinInterval),
		Relay:        relay.New(emitter, reg, clock),
		Arbiter:      arbiter,
		Verifier:     auth.NewTokenVerifier(cfg.TokenSecret),
		Streams:      streamRepo,
		Emitter:      emitter,
		Clock:        clock,
		Logger:       slog.Default(),
	}

	srv := server.NewServer(cfg, h, deps, pool, redisPinger)

	done := runGracefulShutdown(srv, coordinator, h)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
