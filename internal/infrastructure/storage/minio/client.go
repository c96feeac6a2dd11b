// Package minio serves reference tables from an S3-compatible bucket.
package minio

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrBucketNotFound = errors.New(errors.ErrCodeNotFound, "bucket not found")
	ErrClientClosed   = errors.New(errors.ErrCodeInternal, "minio client is closed")
)

// ObjectAPI is the subset of the object-store API the source needs.
type ObjectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	// OpenObject returns the object body.  A missing object yields
	// ErrObjectNotFound.
	OpenObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
}

// MinIOConfig configures the connection and where tables live.
type MinIOConfig struct {
	Endpoint        string        `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl" yaml:"use_ssl"`
	Region          string        `mapstructure:"region" yaml:"region"`
	Bucket          string        `mapstructure:"bucket" yaml:"bucket"`
	Prefix          string        `mapstructure:"prefix" yaml:"prefix"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "ecowarn-reference"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
}

// MinIOClient owns the object-store connection.
type MinIOClient struct {
	api    ObjectAPI
	config *MinIOConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewMinIOClient connects and verifies that the configured bucket exists.
func NewMinIOClient(cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	applyDefaults(cfg)
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}
	c := NewMinIOClientWithAPI(minioAPI{mc}, cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if _, err := c.HealthCheck(ctx); err != nil {
		return nil, err
	}
	c.logger.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// NewMinIOClientWithAPI wraps an existing ObjectAPI without any network call.
func NewMinIOClientWithAPI(api ObjectAPI, cfg *MinIOConfig, log logging.Logger) *MinIOClient {
	applyDefaults(cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MinIOClient{api: api, config: cfg, logger: log}
}

// Bucket returns the bucket holding the tables.
func (c *MinIOClient) Bucket() string { return c.config.Bucket }

// Prefix returns the object-key prefix of the tables.
func (c *MinIOClient) Prefix() string { return c.config.Prefix }

// HealthStatus reports bucket reachability.
type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Error   string
}

// HealthCheck verifies that the bucket exists.
func (c *MinIOClient) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	if c.isClosed() {
		return &HealthStatus{Error: ErrClientClosed.Error()}, ErrClientClosed
	}
	start := time.Now()
	exists, err := c.api.BucketExists(ctx, c.config.Bucket)
	status := &HealthStatus{Healthy: err == nil && exists, Latency: time.Since(start)}
	switch {
	case err != nil:
		status.Error = err.Error()
		return status, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to reach minio")
	case !exists:
		status.Error = "bucket " + c.config.Bucket + " missing"
		return status, ErrBucketNotFound.WithDetail(c.config.Bucket)
	}
	return status, nil
}

// Open returns the body of objectName in the configured bucket.
func (c *MinIOClient) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	if c.isClosed() {
		return nil, ErrClientClosed
	}
	return c.api.OpenObject(ctx, c.config.Bucket, objectName)
}

// Stat returns object metadata.
func (c *MinIOClient) Stat(ctx context.Context, objectName string) (minio.ObjectInfo, error) {
	if c.isClosed() {
		return minio.ObjectInfo{}, ErrClientClosed
	}
	info, err := c.api.StatObject(ctx, c.config.Bucket, objectName, minio.StatObjectOptions{})
	if err != nil && isNoSuchKey(err) {
		return info, ErrObjectNotFound.WithDetail(objectName)
	}
	return info, err
}

// Close marks the client closed.  minio-go holds no long-lived connections.
func (c *MinIOClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *MinIOClient) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}

// minioAPI adapts *minio.Client to ObjectAPI.
type minioAPI struct {
	*minio.Client
}

func (a minioAPI) OpenObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	obj, err := a.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat forces the request so a missing key surfaces here.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound.WithDetail(objectName)
		}
		return nil, err
	}
	return obj, nil
}

//Personal.AI order the ending
