package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/soltixdb/arforecast/internal/cache"
	"github.com/soltixdb/arforecast/internal/config"
	"github.com/soltixdb/arforecast/internal/logging"
	"github.com/soltixdb/arforecast/internal/metrics"
	"github.com/soltixdb/arforecast/internal/queue"
	"github.com/soltixdb/arforecast/internal/router"
	"github.com/soltixdb/arforecast/internal/services"
	"github.com/soltixdb/arforecast/internal/storage"
	"github.com/soltixdb/arforecast/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Forecast service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("Failed to create directories", "error", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg)
		logger.Info("Metrics enabled", "path", cfg.Metrics.Path)
	}

	opts := []services.Option{services.WithMetrics(m)}

	logger.Info("Opening model store", "type", cfg.Store.Type)
	store, err := storage.NewModelStore(cfg.Store, logger)
	if err != nil {
		logger.Fatal("Failed to open model store", "error", err)
	}
	if store != nil {
		opts = append(opts, services.WithStore(store))
	} else {
		logger.Warn("Model persistence DISABLED - save requests will not be stored")
	}

	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	events, err := newEventPublisher(cfg.Queue, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	opts = append(opts, services.WithEvents(events))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Cache.Enabled {
		resultCache, err := cache.NewLRUWithTTL[uint64, *services.ForecastResponse](cfg.Cache.Size, cfg.Cache.TTL)
		if err != nil {
			logger.Fatal("Failed to create result cache", "error", err)
		}
		opts = append(opts, services.WithCache(resultCache))
		go runCacheJanitor(ctx, resultCache, cfg.Cache.TTL, logger)
	}

	svc := services.NewForecastService(logger, cfg.Model, opts...)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close service", "error", err)
		}
	}()

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, svc, m, *cfg)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// newEventPublisher connects the configured event backend. In-process
// memory queues get a subscriber that logs each event so the buffer drains.
func newEventPublisher(cfg config.QueueConfig, logger *logging.Logger) (*queue.EventPublisher, error) {
	switch utils.QueueType(strings.ToLower(cfg.Type)) {
	case utils.QueueTypeMemory, "":
	default:
		return queue.NewEventPublisherFromConfig(cfg)
	}

	q, err := queue.NewQueue(cfg)
	if err != nil {
		return nil, err
	}
	err = q.Subscribe(cfg.Subject, func(data []byte) error {
		ev, err := queue.DecodeForecastEvent(data)
		if err != nil {
			logger.Warn("Dropping malformed forecast event", "error", err)
			return nil
		}
		logger.Debug("Forecast event", "model_id", ev.ID, "forecaster", ev.Forecaster, "horizon", ev.Horizon)
		return nil
	})
	if err != nil {
		_ = q.Close()
		return nil, err
	}
	return queue.NewEventPublisher(q, cfg.Subject), nil
}

// runCacheJanitor drops expired results until ctx is done
func runCacheJanitor(ctx context.Context, c *cache.LRUWithTTL[uint64, *services.ForecastResponse], ttl time.Duration, logger *logging.Logger) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.CleanupExpired(); n > 0 {
				logger.Debug("Expired cached forecasts", "count", n)
			}
		}
	}
}
