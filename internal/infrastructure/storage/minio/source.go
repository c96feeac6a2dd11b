package minio

import (
	"context"
	"fmt"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/domain/reference"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// ReferenceSource loads "{prefix}{medium}_{endpoint}_train.{format}" objects
// from the client's bucket.
type ReferenceSource struct {
	client *MinIOClient
	format reference.Format
	logger logging.Logger
}

var (
	_ reference.Source        = (*ReferenceSource)(nil)
	_ reference.HealthChecker = (*ReferenceSource)(nil)
)

// NewReferenceSource creates a source reading tables in format.
func NewReferenceSource(client *MinIOClient, format reference.Format, log logging.Logger) *ReferenceSource {
	if format == "" {
		format = reference.FormatXLSX
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ReferenceSource{client: client, format: format, logger: log.Named("minio_source")}
}

// ObjectName returns the key of the (medium, endpoint) table.
func (s *ReferenceSource) ObjectName(medium exposure.Medium, endpoint exposure.Endpoint) string {
	return s.client.Prefix() + reference.FileName(medium, endpoint, s.format)
}

// Load implements reference.Source.
func (s *ReferenceSource) Load(ctx context.Context, medium exposure.Medium, endpoint exposure.Endpoint) (*reference.Table, error) {
	key := s.ObjectName(medium, endpoint)
	location := fmt.Sprintf("s3://%s/%s", s.client.Bucket(), key)

	body, err := s.client.Open(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, reference.Missing(medium, endpoint, location)
		}
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to read reference table").WithDetail(location)
	}
	defer body.Close()

	table, err := reference.Decode(body, s.format, medium, endpoint)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to parse reference table").WithDetail(location)
	}
	s.logger.Debug("reference table loaded",
		logging.String("location", location),
		logging.Int("rows", table.NumRows()),
		logging.Int("features", table.NumFeatures()))
	return table, nil
}

// Check implements reference.HealthChecker.
func (s *ReferenceSource) Check(ctx context.Context) error {
	_, err := s.client.HealthCheck(ctx)
	return err
}

//Personal.AI order the ending
