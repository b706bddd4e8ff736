package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fincalc/internal/amqp"
	"fincalc/internal/cache"
	"fincalc/internal/cli"
	"fincalc/internal/config"
	apphttp "fincalc/internal/http"
	"fincalc/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	cfg := cli.LoadAndValidateConfig(logger)

	store, closeStore := newStore(cfg, logger)
	defer closeStore()

	var publisher amqp.Publisher = amqp.NopPublisher{}
	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			// Events are optional; the site works without a broker.
			logger.Warn("Calculation events disabled: broker unavailable", log.FieldError, err)
		} else {
			publisher = client
			logger.Info("Publishing calculation events", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
		}
	}
	defer publisher.Close()

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:                   ":" + cfg.Port,
		Results:                cache.NewResultCache(store, logger),
		Publisher:              publisher,
		Logger:                 logger,
		RateLimitPerMinute:     cfg.RateLimitPerMinute,
		LiveRateLimitPerMinute: cfg.LiveRateLimitPerMinute,
		TrustedProxies:         cfg.TrustedProxies,
		OfflineCacheVersion:    cfg.OfflineCacheVersion,
	})
	if err != nil {
		logger.Error("Failed to build server", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := cli.GracefulShutdown(context.Background(), logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fincalc server", "port", cfg.Port, "cache", store.Name(), log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// newStore picks the result cache backend. The returned func releases it.
func newStore(cfg *config.Config, logger *log.Logger) (cache.Store, func()) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		store := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPrefix, cfg.CacheTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.Warn("Redis not reachable yet, results will be computed uncached until it is", log.FieldError, err, "addr", cfg.RedisAddr)
		}
		return store, func() { _ = store.Close() }
	case config.CacheNone:
		return cache.NopStore{}, func() {}
	default:
		store := cache.NewMemoryStore(cfg.CacheSize, cfg.CacheTTL)
		manager := cache.NewManager(logger)
		manager.Register(store)
		manager.StartCleanup(cfg.CacheTTL)
		return store, manager.Stop
	}
}
