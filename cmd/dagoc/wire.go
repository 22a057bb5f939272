package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aescanero/dagoc/internal/application/compiler"
	"github.com/aescanero/dagoc/internal/application/graphspec"
	"github.com/aescanero/dagoc/internal/config"
	"github.com/aescanero/dagoc/pkg/adapters/codec"
	eventsmemory "github.com/aescanero/dagoc/pkg/adapters/events/memory"
	eventsredis "github.com/aescanero/dagoc/pkg/adapters/events/redis"
	metricsprom "github.com/aescanero/dagoc/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/dagoc/pkg/adapters/storage/file"
	storagememory "github.com/aescanero/dagoc/pkg/adapters/storage/memory"
	storageredis "github.com/aescanero/dagoc/pkg/adapters/storage/redis"
	"github.com/aescanero/dagoc/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the wired compiler and the resources it owns.
type app struct {
	compiler *compiler.Compiler
	eventBus ports.EventBus
	closers  []func() error
}

func (a *app) Close(logger *zap.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}
}

// buildApp wires the configured adapters into a compiler.
func buildApp(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *zap.Logger) (*app, error) {
	a := &app{}

	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
		a.closers = append(a.closers, redisClient.Close)
	}

	var store ports.BundleStore
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		store = storagememory.NewBundleStore()
	case config.CacheBackendRedis:
		store = storageredis.NewBundleStore(redisClient, cfg.Cache.TTL, logger)
	default:
		fileStore, err := file.NewBundleStore(cfg.Cache.Dir, logger)
		if err != nil {
			a.Close(logger)
			return nil, err
		}
		store = fileStore
	}

	var eventBus ports.EventBus
	switch cfg.Events.Backend {
	case config.EventsBackendMemory:
		eventBus = eventsmemory.NewEventBus(logger)
	case config.EventsBackendRedis:
		bus, err := eventsredis.NewStreamsEventBus(
			redisClient,
			cfg.Events.ConsumerGroup,
			fmt.Sprintf("dagoc-%d", os.Getpid()),
			logger,
		)
		if err != nil {
			a.Close(logger)
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
		eventBus = bus
	}
	a.eventBus = eventBus
	if eventBus != nil {
		a.closers = append(a.closers, eventBus.Close)
	}

	bundleCodec, err := codec.New(cfg.Cache.Encoding)
	if err != nil {
		a.Close(logger)
		return nil, err
	}

	a.compiler = compiler.NewCompiler(
		graphspec.NewBuilder(logger),
		store,
		bundleCodec,
		eventBus,
		metricsprom.NewCollector(reg),
		logger,
	)
	a.compiler.SetConcurrency(cfg.CompileWorkers)

	logger.Debug("compiler wired",
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("events_backend", cfg.Events.Backend),
		zap.String("encoding", bundleCodec.Name()))

	return a, nil
}
