// Package app assembles the risk engine and its adapters from a Config.  The
// API server and the CLI both start from NewRuntime so that a prediction made
// locally and one made over HTTP go through the same collaborators.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/turtacn/ecowarn/internal/application/assessment"
	"github.com/turtacn/ecowarn/internal/config"
	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/domain/reference"
	"github.com/turtacn/ecowarn/internal/infrastructure/database/redis"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ecowarn/internal/infrastructure/storage/filesystem"
	"github.com/turtacn/ecowarn/internal/infrastructure/storage/minio"
	"github.com/turtacn/ecowarn/internal/intelligence/common"
	"github.com/turtacn/ecowarn/internal/intelligence/ecotox"
	httpapi "github.com/turtacn/ecowarn/internal/interfaces/http"
	"github.com/turtacn/ecowarn/internal/interfaces/http/handlers"
	"github.com/turtacn/ecowarn/internal/interfaces/http/middleware"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// Runtime holds the wired engine.  Optional parts are nil when disabled in
// the configuration.
type Runtime struct {
	Config  *config.Config
	Logger  logging.Logger
	Service assessment.Service

	// Source is the instrumented reference source the service reads from.
	Source reference.Source
	// Models is the fitted-model cache, nil unless cache.models.enabled.
	Models *ecotox.CachedProvider
	// Collector and Metrics are nil unless metrics.enabled.
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	engineMetrics common.EngineMetrics
	resultCache   redis.Cache
	fsSource      *filesystem.Source
	checkers []handlers.HealthChecker

	closeOnce sync.Once
	closers   []func() error
}

// NewLogger maps the logging section of cfg onto a zap-backed Logger.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	out := cfg.Output
	if out == "" {
		out = config.DefaultLogOutput
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Level,
		Format:           cfg.Format,
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// NewRuntime builds every collaborator named by cfg.  Connections opened
// before a failure are closed again.
func NewRuntime(cfg *config.Config, logger logging.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.InvalidParam("runtime needs a configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	rt := &Runtime{Config: cfg, Logger: logger}

	if err := rt.initMetrics(); err != nil {
		return nil, err
	}
	engineMetrics := common.NewNoopEngineMetrics()
	if rt.Collector != nil {
		m, err := common.NewPrometheusEngineMetrics(rt.Collector.Registerer())
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to register engine metrics")
		}
		engineMetrics = m
	}
	rt.engineMetrics = engineMetrics

	if err := rt.initSource(); err != nil {
		rt.Close()
		return nil, err
	}

	var provider ecotox.ModelProvider = ecotox.NewRetrainingProvider(ecotox.NewTrainer(logger, engineMetrics))
	if cfg.Cache.Models.Enabled {
		cached, err := ecotox.NewCachedProvider(provider, cfg.Cache.Models.Size, engineMetrics, logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Models = cached
		provider = cached
	}

	var results assessment.ResultCache
	if cfg.Cache.Results.Enabled {
		cache, err := rt.initResultCache()
		if err != nil {
			rt.Close()
			return nil, err
		}
		results = cache
	}

	svc, err := assessment.NewService(assessment.Options{
		Source:    rt.Source,
		Provider:  provider,
		Predictor: ecotox.NewPredictor(logger, engineMetrics),
		Cache:     results,
		CacheTTL:  cfg.Cache.Results.TTL,
		Metrics:   engineMetrics,
		Logger:    logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Service = svc
	rt.checkers = append([]handlers.HealthChecker{handlers.CheckFunc{ComponentName: "reference", Fn: svc.Ready}}, rt.checkers...)

	logger.Info("runtime initialized",
		logging.String("reference_source", cfg.Reference.Source),
		logging.Bool("model_cache", rt.Models != nil),
		logging.Bool("result_cache", results != nil),
		logging.Bool("metrics", rt.Collector != nil),
	)
	return rt, nil
}

func (rt *Runtime) initMetrics() error {
	if !rt.Config.Metrics.Enabled {
		return nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            rt.Config.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, rt.Logger)
	if err != nil {
		return err
	}
	rt.Collector = collector
	rt.Metrics = prometheus.NewAppMetrics(collector)
	return nil
}

func (rt *Runtime) initSource() error {
	cfg := rt.Config
	format, err := reference.ParseFormat(cfg.Reference.Format)
	if err != nil {
		return err
	}

	var src reference.Source
	switch cfg.Reference.Source {
	case config.SourceMinIO:
		client, err := minio.NewMinIOClient(&minio.MinIOConfig{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKey,
			SecretAccessKey: cfg.MinIO.SecretKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Region:          cfg.MinIO.Region,
			Bucket:          cfg.MinIO.Bucket,
			Prefix:          cfg.MinIO.Prefix,
		}, rt.Logger)
		if err != nil {
			return err
		}
		rt.closers = append(rt.closers, client.Close)
		src = minio.NewReferenceSource(client, format, rt.Logger)
	default:
		rt.fsSource = filesystem.NewSource(cfg.Reference.Dir, format, rt.Logger)
		src = rt.fsSource
	}

	if rt.Metrics != nil {
		src = prometheus.InstrumentSource(src, cfg.Reference.Source, rt.Metrics)
	}
	rt.Source = src
	return nil
}

func (rt *Runtime) initResultCache() (assessment.ResultCache, error) {
	cfg := rt.Config
	client, err := redis.NewClient(&redis.RedisConfig{
		Mode:          cfg.Redis.Mode,
		Addr:          cfg.Redis.Addr,
		MasterName:    cfg.Redis.MasterName,
		SentinelAddrs: cfg.Redis.SentinelAddrs,
		ClusterAddrs:  cfg.Redis.ClusterAddrs,
		Username:      cfg.Redis.Username,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		MaxRetries:    cfg.Redis.MaxRetries,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		TLSEnabled:    cfg.Redis.TLSEnabled,
		TLSCAFile:     cfg.Redis.TLSCAFile,
		TLSInsecure:   cfg.Redis.TLSInsecure,
	}, rt.Logger)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, client.Close)
	rt.checkers = append(rt.checkers, handlers.CheckFunc{ComponentName: "redis", Fn: client.Ping})
	rt.resultCache = redis.NewRedisCache(client, rt.Logger,
		redis.WithPrefix(cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(cfg.Cache.Results.TTL),
		redis.WithJitter(cfg.Cache.Results.Jitter),
	)
	return rt.resultCache, nil
}

// purgeTimeout bounds the SCAN + DEL sweep of one medium's verdicts.
const purgeTimeout = 10 * time.Second

// OnReferenceChange drops the cached models of one table and every cached
// verdict of its medium.  It is the callback of the filesystem watcher.
func (rt *Runtime) OnReferenceChange(medium exposure.Medium, endpoint exposure.Endpoint) {
	table := medium.String() + "/" + endpoint.String()
	dropped := 0
	if rt.Models != nil {
		dropped = rt.Models.Invalidate(medium, endpoint)
	}
	var purged int64
	if rt.resultCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		n, err := rt.resultCache.DeleteByPrefix(ctx, assessment.ResultPrefix(medium))
		cancel()
		purged = n
		if err != nil {
			rt.Logger.Warn("purging cached verdicts failed", logging.String("table", table), logging.Err(err))
		}
	}
	if rt.Metrics != nil {
		rt.Metrics.ReferenceChangesTotal.WithLabelValues(table).Inc()
	}
	rt.Logger.Info("reference table changed",
		logging.String("table", table),
		logging.Int("models_dropped", dropped),
		logging.Int64("verdicts_purged", purged),
	)
}

// Watch follows the reference directory until ctx is done.  It returns
// immediately when watching is off or the source is not a directory.
func (rt *Runtime) Watch(ctx context.Context) error {
	if rt.fsSource == nil || !rt.Config.Reference.Watch {
		return nil
	}
	w, err := filesystem.NewWatcher(rt.fsSource, rt.OnReferenceChange, rt.Logger)
	if err != nil {
		return err
	}
	defer w.Close()
	rt.Logger.Info("watching reference directory", logging.String("dir", rt.fsSource.Dir()))
	return w.Run(ctx)
}

// Handler returns the HTTP route tree of the API.
func (rt *Runtime) Handler(version string) http.Handler {
	cfg := rt.Config

	var observer handlers.ErrorObserver
	logCfg := middleware.DefaultLoggingConfig()
	if rt.Metrics != nil {
		metrics := rt.Metrics
		logCfg.Metrics = metrics
		observer = func(code errors.ErrorCode) {
			prometheus.RecordError(metrics, "api", code.String())
		}
	}

	routerCfg := httpapi.RouterConfig{
		PredictionHandler: handlers.NewPredictionHandler(rt.Service, cfg.Server.MaxBodySize, observer, rt.Logger),
		HealthHandler:     handlers.NewHealthHandler(version, rt.checkers...),
		Logging:           middleware.RequestLogging(rt.Logger, logCfg),
		RequestTimeout:    cfg.Server.RequestTimeout,
	}
	if rt.Collector != nil {
		routerCfg.MetricsCollector = rt.Collector
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.StatsHandler = handlers.NewStatsHandler(rt.engineMetrics)
	}

	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewTokenBucketLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, time.Minute)
		rt.closers = append(rt.closers, func() error { limiter.Stop(); return nil })
		rlCfg := middleware.DefaultRateLimitConfig()
		if rt.Metrics != nil {
			metrics := rt.Metrics
			rlCfg.OnLimited = func(*http.Request) {
				metrics.RateLimitedTotal.WithLabelValues("/api/v1").Inc()
			}
		}
		routerCfg.RateLimit = middleware.RateLimit(limiter, rlCfg)
	}

	return httpapi.NewRouter(routerCfg)
}

// Serve runs the API on cfg.Server until ctx is done, then drains in-flight
// requests.  The reference watcher runs alongside when enabled.
func (rt *Runtime) Serve(ctx context.Context, version string) error {
	cfg := rt.Config.Server
	server := httpapi.NewServer(httpapi.ServerConfig{
		Addr:            cfg.Addr(),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, rt.Handler(version), rt.Logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- server.ListenAndServe() }()
	go func() {
		if err := rt.Watch(ctx); err != nil {
			rt.Logger.Warn("reference watcher stopped", logging.Err(err))
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	rt.Logger.Info("shutting down API server")
	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.ShutdownTimeout+time.Second)
	defer done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Close releases connections in reverse order of creation.
func (rt *Runtime) Close() error {
	var firstErr error
	rt.closeOnce.Do(func() {
		for i := len(rt.closers) - 1; i >= 0; i-- {
			if err := rt.closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	if firstErr != nil {
		return fmt.Errorf("runtime close: %w", firstErr)
	}
	return nil
}

//Personal.AI order the ending
