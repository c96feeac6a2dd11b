package prometheus

import (
	"context"
	"time"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/domain/reference"
)

// InstrumentedSource records load latency and outcome of a reference.Source.
type InstrumentedSource struct {
	next    reference.Source
	name    string
	metrics *AppMetrics
}

// InstrumentSource wraps next; name labels the source kind ("filesystem",
// "minio").
func InstrumentSource(next reference.Source, name string, metrics *AppMetrics) *InstrumentedSource {
	return &InstrumentedSource{next: next, name: name, metrics: metrics}
}

func (s *InstrumentedSource) Load(ctx context.Context, medium exposure.Medium, endpoint exposure.Endpoint) (*reference.Table, error) {
	start := time.Now()
	t, err := s.next.Load(ctx, medium, endpoint)
	RecordReferenceLoad(s.metrics, s.name, string(medium)+"/"+string(endpoint), time.Since(start), err)
	return t, err
}

// Check forwards to the wrapped source when it is a HealthChecker and
// records the outcome under the source name.
func (s *InstrumentedSource) Check(ctx context.Context) error {
	hc, ok := s.next.(reference.HealthChecker)
	if !ok {
		return nil
	}
	err := hc.Check(ctx)
	RecordHealth(s.metrics, s.name, err == nil)
	return err
}

//Personal.AI order the ending
