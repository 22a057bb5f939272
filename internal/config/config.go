package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendFile   = "file"
	CacheBackendRedis  = "redis"
)

// Event backends.
const (
	EventsBackendNone   = "none"
	EventsBackendMemory = "memory"
	EventsBackendRedis  = "redis"
)

// Config holds all configuration for the graph compiler
type Config struct {
	// Server configuration
	HTTPPort int    `env:"DAGOC_HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CompileWorkers bounds how many graphs are compiled at once.
	CompileWorkers int `env:"DAGOC_COMPILE_WORKERS" envDefault:"4"`

	// Bundle cache
	Cache CacheConfig

	// Compilation events
	Events EventsConfig

	// Redis configuration, used by the redis cache and event backends
	Redis RedisConfig

	ShutdownTimeout time.Duration `env:"DAGOC_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// CacheConfig holds bundle cache configuration
type CacheConfig struct {
	Backend string `env:"DAGOC_CACHE_BACKEND" envDefault:"file"`
	Dir     string `env:"DAGOC_CACHE_DIR" envDefault:".dagoc/cache"`
	// TTL applies to the redis backend; zero keeps bundles until replaced.
	TTL      time.Duration `env:"DAGOC_BUNDLE_TTL" envDefault:"168h"`
	Encoding string        `env:"DAGOC_BUNDLE_ENCODING" envDefault:"json"`
}

// EventsConfig holds event bus configuration
type EventsConfig struct {
	Backend string `env:"DAGOC_EVENTS_BACKEND" envDefault:"none"`
	// ConsumerGroup prefixes the per-subscription Redis consumer groups.
	ConsumerGroup string `env:"DAGOC_EVENTS_CONSUMER_GROUP" envDefault:"dagoc"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.CompileWorkers < 1 {
		return fmt.Errorf("compile workers must be at least 1, got %d", c.CompileWorkers)
	}

	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	case CacheBackendFile:
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache directory is required for the file backend")
		}
	default:
		return fmt.Errorf("unsupported cache backend: %s (must be memory, file, or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("bundle TTL must not be negative")
	}

	switch c.Cache.Encoding {
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported bundle encoding: %s (must be json or yaml)", c.Cache.Encoding)
	}

	switch c.Events.Backend {
	case EventsBackendNone, EventsBackendMemory, EventsBackendRedis:
	default:
		return fmt.Errorf("unsupported events backend: %s (must be none, memory, or redis)", c.Events.Backend)
	}

	if c.UsesRedis() && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// UsesRedis reports whether any backend needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Cache.Backend == CacheBackendRedis || c.Events.Backend == EventsBackendRedis
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
