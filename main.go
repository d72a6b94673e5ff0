package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cargo_server/config"
	"cargo_server/internal/bootstrap"
	"cargo_server/pkg/logger"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

func main() {
	mode := flag.String("mode", "all", "Run mode: api, worker, all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		lg := zerolog.New(os.Stderr).With().Timestamp().Logger()
		lg.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New("cargo-server", cfg.LogLevel, cfg.IsDevelopment())

	deps, cleanup, err := bootstrap.NewDependencies(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize dependencies")
	}
	defer cleanup()

	switch *mode {
	case "api":
		runAPI(cfg, log, deps)
	case "worker":
		runWorker(cfg, log, deps)
	case "all":
		go runWorker(cfg, log, deps)
		runAPI(cfg, log, deps)
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

func runAPI(cfg *config.Config, log zerolog.Logger, deps *bootstrap.Dependencies) {
	app := bootstrap.NewAPI(cfg, log, deps)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Dur("timeout", shutdownTimeout).Msg("shutting down api server")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- app.Shutdown()
		}()

		select {
		case err := <-done:
			if err != nil {
				log.Error().Err(err).Msg("error shutting down")
			} else {
				log.Info().Msg("api server shut down gracefully")
			}
		case <-ctx.Done():
			log.Warn().Msg("api shutdown timed out, forcing exit")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("starting api server")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func runWorker(cfg *config.Config, log zerolog.Logger, deps *bootstrap.Dependencies) {
	w := bootstrap.NewWorker(cfg, log, deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Dur("timeout", shutdownTimeout).Msg("shutting down worker")

		done := make(chan struct{})
		go func() {
			w.Stop()
			close(done)
		}()

		select {
		case <-done:
			log.Info().Msg("worker shut down gracefully")
		case <-time.After(shutdownTimeout):
			log.Warn().Msg("worker shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}()

	log.Info().Msg("starting worker")
	w.Start()
}
