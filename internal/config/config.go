// Package config defines the configuration structures of ecowarn.  No I/O or
// parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format" yaml:"format"` // "json" | "console"
	Output string `mapstructure:"output" yaml:"output"` // "stdout" | "stderr" | file path
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size" yaml:"max_body_size"`
	// RateLimit is the sustained number of prediction requests per second;
	// 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst" yaml:"rate_burst"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Reference source kinds.
const (
	SourceFilesystem = "filesystem"
	SourceMinIO      = "minio"
)

// Redis deployment modes.
const (
	RedisStandalone = "standalone"
	RedisSentinel   = "sentinel"
	RedisCluster    = "cluster"
)

// ReferenceConfig selects where the four reference tables come from.
type ReferenceConfig struct {
	Source string `mapstructure:"source" yaml:"source"` // "filesystem" | "minio"
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Format string `mapstructure:"format" yaml:"format"` // "xlsx" | "csv"
	// Watch invalidates cached models when a table file changes.  Only
	// meaningful for the filesystem source.
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// MinIOConfig holds object-storage parameters for the minio source.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
	Region    string `mapstructure:"region" yaml:"region"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

// RedisConfig holds Redis connection parameters for the result cache.
// Mode is standalone, sentinel or cluster; Addr serves standalone only.
type RedisConfig struct {
	Mode          string        `mapstructure:"mode" yaml:"mode"`
	Addr          string        `mapstructure:"addr" yaml:"addr"`
	MasterName    string        `mapstructure:"master_name" yaml:"master_name"`
	SentinelAddrs []string      `mapstructure:"sentinel_addrs" yaml:"sentinel_addrs"`
	ClusterAddrs  []string      `mapstructure:"cluster_addrs" yaml:"cluster_addrs"`
	Username      string        `mapstructure:"username" yaml:"username"`
	Password      string        `mapstructure:"password" yaml:"password"`
	DB            int           `mapstructure:"db" yaml:"db"`
	PoolSize      int           `mapstructure:"pool_size" yaml:"pool_size"`
	MinIdleConns  int           `mapstructure:"min_idle_conns" yaml:"min_idle_conns"`
	MaxRetries    int           `mapstructure:"max_retries" yaml:"max_retries"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	TLSEnabled    bool          `mapstructure:"tls_enabled" yaml:"tls_enabled"`
	TLSCAFile     string        `mapstructure:"tls_ca_file" yaml:"tls_ca_file"`
	TLSInsecure   bool          `mapstructure:"tls_insecure" yaml:"tls_insecure"`
	KeyPrefix     string        `mapstructure:"key_prefix" yaml:"key_prefix"`
}

// ModelCacheConfig controls the in-process fitted-model LRU.
type ModelCacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Size    int  `mapstructure:"size" yaml:"size"`
}

// ResultCacheConfig controls the Redis verdict cache.
// Jitter spreads expiries by a fraction of TTL in either direction.
type ResultCacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Jitter  float64       `mapstructure:"jitter" yaml:"jitter"`
}

// CacheConfig groups both caches.  Both are off by default, in which case
// every prediction retrains from the current tables.
type CacheConfig struct {
	Models  ModelCacheConfig  `mapstructure:"models" yaml:"models"`
	Results ResultCacheConfig `mapstructure:"results" yaml:"results"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
	Path      string `mapstructure:"path" yaml:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Reference ReferenceConfig `mapstructure:"reference" yaml:"reference"`
	MinIO     MinIOConfig     `mapstructure:"minio" yaml:"minio"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first problem found as an ErrCodeValidation error.
func (c *Config) Validate() error {
	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Validation("log.level", fmt.Sprintf("log level %q is invalid; expected debug|info|warn|error", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errors.Validation("log.format", fmt.Sprintf("log format %q is invalid; expected json|console", c.Log.Format))
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Validation("server.port", fmt.Sprintf("port %d is out of range [1, 65535]", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		return errors.Validation("server.rate_limit", "rate limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return errors.Validation("server.rate_burst", "rate burst must be at least 1 when rate limiting is on")
	}

	// Reference
	switch c.Reference.Format {
	case "xlsx", "csv":
	default:
		return errors.Validation("reference.format", fmt.Sprintf("format %q is invalid; expected xlsx|csv", c.Reference.Format))
	}
	switch c.Reference.Source {
	case SourceFilesystem:
		if c.Reference.Dir == "" {
			return errors.Validation("reference.dir", "reference directory is required")
		}
	case SourceMinIO:
		if c.MinIO.Endpoint == "" {
			return errors.Validation("minio.endpoint", "minio endpoint is required for the minio source")
		}
		if c.MinIO.Bucket == "" {
			return errors.Validation("minio.bucket", "minio bucket is required for the minio source")
		}
	default:
		return errors.Validation("reference.source", fmt.Sprintf("source %q is invalid; expected filesystem|minio", c.Reference.Source))
	}

	// Cache
	if c.Cache.Models.Enabled && c.Cache.Models.Size < 1 {
		return errors.Validation("cache.models.size", fmt.Sprintf("model cache size must be ≥ 1, got %d", c.Cache.Models.Size))
	}
	if c.Cache.Results.Enabled {
		if c.Cache.Results.TTL <= 0 {
			return errors.Validation("cache.results.ttl", "result cache ttl must be positive")
		}
		if c.Cache.Results.Jitter < 0 || c.Cache.Results.Jitter >= 1 {
			return errors.Validation("cache.results.jitter", fmt.Sprintf("jitter must be in [0, 1), got %g", c.Cache.Results.Jitter))
		}
		switch c.Redis.Mode {
		case "", RedisStandalone:
			if c.Redis.Addr == "" {
				return errors.Validation("redis.addr", "redis address is required for the result cache")
			}
		case RedisSentinel:
			if c.Redis.MasterName == "" || len(c.Redis.SentinelAddrs) == 0 {
				return errors.Validation("redis.sentinel_addrs", "sentinel mode needs master_name and sentinel_addrs")
			}
		case RedisCluster:
			if len(c.Redis.ClusterAddrs) == 0 {
				return errors.Validation("redis.cluster_addrs", "cluster mode needs cluster_addrs")
			}
		default:
			return errors.Validation("redis.mode", fmt.Sprintf("mode %q is invalid; expected standalone|sentinel|cluster", c.Redis.Mode))
		}
		if c.Redis.TLSCAFile != "" && !c.Redis.TLSEnabled {
			return errors.Validation("redis.tls_ca_file", "tls_ca_file is set but tls_enabled is false")
		}
		if c.Redis.DB < 0 {
			return errors.Validation("redis.db", fmt.Sprintf("redis db must be ≥ 0, got %d", c.Redis.DB))
		}
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.Validation("metrics.namespace", "metrics namespace is required")
	}

	return nil
}

//Personal.AI order the ending
