package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keyline/keyline/internal/auth"
	"github.com/keyline/keyline/internal/config"
	"github.com/keyline/keyline/internal/licensing"
	"github.com/keyline/keyline/internal/server"
	"github.com/keyline/keyline/internal/store/postgres"
	redisstore "github.com/keyline/keyline/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("KEYLINE_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("KEYLINE_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL and apply the schema.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	// Connect to Redis for the activation event stream. In self-hosted
	// mode Redis is optional; events are simply not streamed.
	var pubsub *redisstore.PubSub
	pubsub, err = redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		if !cfg.SelfHosted {
			return err
		}
		log.Warn().Err(err).Msg("redis unavailable, event stream disabled")
		pubsub = nil
	}
	if pubsub != nil {
		defer pubsub.Close()
	}

	guard := auth.NewGuard(store.Brands())

	var publisher licensing.Publisher
	if pubsub != nil {
		publisher = pubsub
	}

	svcs := server.Services{
		Provisioner: licensing.NewProvisioningService(
			store.Brands(), store.Products(), store.LicenseKeys(), store.Licenses(), store.Activations(), store.Audit(),
		),
		Activator: licensing.NewActivationService(
			store.LicenseKeys(), store.Products(), store.Licenses(), store.Activations(), store.Audit(), publisher,
		),
		Checker: licensing.NewStatusService(
			store.LicenseKeys(), store.Products(), store.Licenses(), store.Activations(),
		),
		Querier: licensing.NewQueryService(
			store.Products(), store.LicenseKeys(), store.Licenses(), store.Activations(), store.Audit(),
		),
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, store, pubsub, guard, svcs)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
