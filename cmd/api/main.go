package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/extracurricular/internal/api"
	"example.com/extracurricular/internal/config"
	"example.com/extracurricular/internal/domain"
	"example.com/extracurricular/internal/events"
	"example.com/extracurricular/internal/logging"
	"example.com/extracurricular/internal/seed"
	httptransport "example.com/extracurricular/internal/transport/http"
)

func main() {
	// Load first so LOG_LEVEL and LOG_FORMAT from .env reach the logger.
	cfg, err := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("activities service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	inserted, err := seed.EnsureSeeded(ctx, repo, seed.Catalog())
	if err != nil {
		return err
	}
	if inserted > 0 {
		logger.Info("seeded empty store", "activities", inserted)
	} else {
		logger.Info("store already populated; skipping seed")
	}

	opts := []domain.Option{domain.WithLogger(logger)}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("kafka writer close failed", "error", err)
			}
		}()
		opts = append(opts, domain.WithPublisher(publisher))
		logger.Info("publishing roster events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	service := domain.NewService(repo, opts...)
	router := api.NewRouter(api.NewHandler(service, logger), api.RouterConfig{
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        promhttp.Handler(),
		Logger:         logger,
	})

	serverCfg := httptransport.DefaultServerConfig(cfg.HTTPAddress)
	serverCfg.ShutdownTimeout = cfg.ShutdownTimeout
	server := httptransport.NewServer(serverCfg, router)

	logger.Info("activities service listening", "address", cfg.HTTPAddress, "backend", cfg.StoreBackend)
	if err := httptransport.Run(ctx, server, serverCfg.ShutdownTimeout); err != nil {
		return err
	}
	logger.Info("activities service stopped cleanly")
	return nil
}
