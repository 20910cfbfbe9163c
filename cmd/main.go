package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jittakal/podstats/internal/api"
	"github.com/jittakal/podstats/internal/config"
	"github.com/jittakal/podstats/internal/config/dto"
	"github.com/jittakal/podstats/internal/observability"
	"github.com/jittakal/podstats/internal/params"
	"github.com/jittakal/podstats/internal/query"
	"github.com/jittakal/podstats/internal/server"
	"github.com/jittakal/podstats/internal/storage"
	"github.com/jittakal/podstats/pkg/blobs"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.NewLoader().Load(config.ResolvePath(*configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := observability.WithService(
		observability.NewLogger(loggingConfig(cfg.Observability.Logging)),
		cfg.Application.Name,
		cfg.Application.Version,
		cfg.Application.Environment,
	)
	logger.Info("starting podstats query service")

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Track cleanup functions, run in reverse order
	var cleanupFuncs []func() error
	addCleanup := func(name string, fn func() error) {
		cleanupFuncs = append(cleanupFuncs, fn)
		logger.Debug("registered cleanup", "component", name)
	}
	defer func() {
		for i := len(cleanupFuncs) - 1; i >= 0; i-- {
			if err := cleanupFuncs[i](); err != nil {
				logger.Error("cleanup failed", "error", err)
			}
		}
	}()

	ctx := context.Background()

	primary, err := storage.NewStore(ctx, cfg.Storage, logger, metrics)
	if err != nil {
		return fmt.Errorf("failed to create primary store: %w", err)
	}
	addCleanup("primary-store", primary.Close)
	healthStores := map[string]blobs.Store{"primary": primary}

	var replica blobs.Store
	if cfg.ReplicaStorage.Enabled() {
		replica, err = storage.NewStore(ctx, cfg.ReplicaStorage, logger.With("store", "replica"), metrics)
		if err != nil {
			return fmt.Errorf("failed to create replica store: %w", err)
		}
		addCleanup("replica-store", replica.Close)
		healthStores["replica"] = replica
	}

	executor := query.NewExecutor(logger, metrics, cfg.Query.MaxResponseBytes)
	handler := api.NewHandler(
		executor,
		api.Stores{Primary: primary, Replica: replica},
		params.Contract{MaxLimit: cfg.Query.MaxLimit},
		metrics,
		logger,
	)

	checker := server.NewStoreChecker(healthStores, storage.ReadinessPrefix, cfg.Server.ReadinessTimeout())

	httpServer := server.NewServer(
		server.Config{
			Port:           cfg.Server.Port,
			MetricsEnabled: cfg.Observability.Metrics.Enabled,
			MetricsPort:    cfg.Observability.Metrics.Port,
			MetricsPath:    cfg.Observability.Metrics.Path,
			LivenessPath:   cfg.Observability.Health.LivenessPath,
			ReadinessPath:  cfg.Observability.Health.ReadinessPath,
			ReadTimeout:    cfg.Server.ReadTimeout(),
			WriteTimeout:   cfg.Server.WriteTimeout(),
			IdleTimeout:    cfg.Server.IdleTimeout(),
		},
		handler,
		checker,
		registry,
		logger,
	)
	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	logger.Info("application started successfully",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Backend,
		"replica", cfg.ReplicaStorage.Backend,
	)

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received termination signal", "signal", sig.String())

	// Fail readiness first so load balancers stop routing before listeners close
	checker.Drain()

	gracePeriod := cfg.Shutdown.GracePeriod()
	if gracePeriod <= 0 {
		gracePeriod = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracePeriod)
	defer cancel()

	logger.Info("initiating graceful shutdown", "grace_period", gracePeriod)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	logger.Info("application stopped successfully")
	return nil
}

func loggingConfig(cfg dto.LoggingConfig) observability.LoggingConfig {
	return observability.LoggingConfig{
		Level:     cfg.Level,
		Format:    cfg.Format,
		Output:    cfg.Output,
		AddSource: cfg.AddSource,
	}
}
