// Package main is the entry point for the sports week API.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sports-week-api/internal/config"
	"sports-week-api/internal/pkg/db"
	"sports-week-api/internal/pkg/lock"
	"sports-week-api/internal/realtime"
	"sports-week-api/internal/repository"
	"sports-week-api/internal/server"
	"sports-week-api/internal/service"
)

var _ service.Store = (*repository.Store)(nil)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg.Log)

	log.Info().Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	log.Info().Msg("Running database migrations...")
	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	store := repository.NewStore(dbPool.Pool)
	hub := realtime.NewHub(cfg.Server.AllowedOrigins)

	pointsService := service.NewPointsService(store, lock.NewKeyLock(), cfg.Points.ApplyLockTimeout, hub)
	leaderboardService := service.NewLeaderboardService(store, cfg.Leaderboard.DetailConcurrency)
	matchService := service.NewMatchService(store, pointsService, hub)

	srv, err := server.New(&server.Dependencies{
		Config:             cfg,
		PointsService:      pointsService,
		LeaderboardService: leaderboardService,
		MatchService:       matchService,
		Hub:                hub,
		Health:             dbPool,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Received shutdown signal")
		return srv.Stop(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("Server stopped gracefully")
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
