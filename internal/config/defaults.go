package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stderr"

	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 60 * time.Second
	DefaultServerRequestTimeout  = 30 * time.Second
	DefaultServerShutdownTimeout = 10 * time.Second
	DefaultServerMaxBodySize     = 1 << 20
	DefaultServerRateLimit       = 20.0
	DefaultServerRateBurst       = 40

	DefaultReferenceSource = SourceFilesystem
	DefaultReferenceDir    = "."
	DefaultReferenceFormat = "xlsx"

	DefaultMinIOBucket = "ecowarn-reference"
	DefaultMinIORegion = "us-east-1"

	DefaultRedisMode       = RedisStandalone
	DefaultRedisAddr       = "localhost:6379"
	DefaultRedisPoolSize   = 10
	DefaultRedisMaxRetries = 3
	DefaultRedisKeyPrefix  = "ecowarn:"

	DefaultModelCacheSize    = 8
	DefaultResultCacheTTL    = 10 * time.Minute
	DefaultResultCacheJitter = 0.1

	DefaultMetricsNamespace = "ecowarn"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields that have already been set are left unchanged so that explicit
// configuration always wins.  Booleans are never touched.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultServerRequestTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.RateBurst == 0 && cfg.Server.RateLimit > 0 {
		cfg.Server.RateBurst = DefaultServerRateBurst
	}

	// ── Reference ─────────────────────────────────────────────────────────────
	if cfg.Reference.Source == "" {
		cfg.Reference.Source = DefaultReferenceSource
	}
	if cfg.Reference.Dir == "" {
		cfg.Reference.Dir = DefaultReferenceDir
	}
	if cfg.Reference.Format == "" {
		cfg.Reference.Format = DefaultReferenceFormat
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Mode == "" {
		cfg.Redis.Mode = DefaultRedisMode
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.MaxRetries == 0 {
		cfg.Redis.MaxRetries = DefaultRedisMaxRetries
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Models.Size == 0 {
		cfg.Cache.Models.Size = DefaultModelCacheSize
	}
	if cfg.Cache.Results.TTL == 0 {
		cfg.Cache.Results.TTL = DefaultResultCacheTTL
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// registerKeys declares every key to viper so that ECOWARN_* variables are
// honoured by Unmarshal even when the key is absent from the file.
func registerKeys(v *viper.Viper) {
	defaults := map[string]interface{}{
		"log.level":  DefaultLogLevel,
		"log.format": DefaultLogFormat,
		"log.output": DefaultLogOutput,

		"server.host":             DefaultServerHost,
		"server.port":             DefaultServerPort,
		"server.read_timeout":     DefaultServerReadTimeout,
		"server.write_timeout":    DefaultServerWriteTimeout,
		"server.request_timeout":  DefaultServerRequestTimeout,
		"server.shutdown_timeout": DefaultServerShutdownTimeout,
		"server.max_body_size":    DefaultServerMaxBodySize,
		"server.rate_limit":       DefaultServerRateLimit,
		"server.rate_burst":       DefaultServerRateBurst,

		"reference.source": DefaultReferenceSource,
		"reference.dir":    DefaultReferenceDir,
		"reference.format": DefaultReferenceFormat,
		"reference.watch":  false,

		"minio.endpoint":   "",
		"minio.access_key": "",
		"minio.secret_key": "",
		"minio.bucket":     DefaultMinIOBucket,
		"minio.prefix":     "",
		"minio.region":     DefaultMinIORegion,
		"minio.use_ssl":    false,

		"redis.mode":           DefaultRedisMode,
		"redis.addr":           DefaultRedisAddr,
		"redis.master_name":    "",
		"redis.sentinel_addrs": []string{},
		"redis.cluster_addrs":  []string{},
		"redis.username":       "",
		"redis.password":       "",
		"redis.db":             0,
		"redis.pool_size":      DefaultRedisPoolSize,
		"redis.min_idle_conns": 0,
		"redis.max_retries":    DefaultRedisMaxRetries,
		"redis.dial_timeout":   5 * time.Second,
		"redis.read_timeout":   3 * time.Second,
		"redis.write_timeout":  3 * time.Second,
		"redis.tls_enabled":    false,
		"redis.tls_ca_file":    "",
		"redis.tls_insecure":   false,
		"redis.key_prefix":     DefaultRedisKeyPrefix,

		"cache.models.enabled":  false,
		"cache.models.size":     DefaultModelCacheSize,
		"cache.results.enabled": false,
		"cache.results.ttl":     DefaultResultCacheTTL,
		"cache.results.jitter":  DefaultResultCacheJitter,

		"metrics.enabled":   true,
		"metrics.namespace": DefaultMetricsNamespace,
		"metrics.path":      DefaultMetricsPath,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

//Personal.AI order the ending
