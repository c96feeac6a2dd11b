package ecotox

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/ecowarn/internal/domain/reference"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/internal/intelligence/common"
	"github.com/turtacn/ecowarn/internal/intelligence/gbt"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// Trainer fits one classifier per call from a full reference table.  It holds
// no model state and is safe for concurrent use.
type Trainer struct {
	logger  logging.Logger
	metrics common.EngineMetrics
}

// NewTrainer creates a Trainer.  nil collaborators are replaced by no-ops.
func NewTrainer(logger logging.Logger, metrics common.EngineMetrics) *Trainer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopEngineMetrics()
	}
	return &Trainer{logger: logger.Named("trainer"), metrics: metrics}
}

// Train validates table against cfg and fits the configured family on every
// row.  Schema problems are reported before any fitting.  Fitting problems
// come back as ErrCodeTrainingFailure naming the medium and endpoint.
func (t *Trainer) Train(ctx context.Context, table *reference.Table, cfg ModelConfig) (gbt.Model, error) {
	if table == nil {
		return nil, errors.New(errors.ErrCodeReferenceDataMissing, "no reference table").
			WithDetail(fmt.Sprintf("medium=%s endpoint=%s", cfg.Medium, cfg.Endpoint))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table.Medium != cfg.Medium || table.Endpoint != cfg.Endpoint {
		return nil, errors.New(errors.ErrCodeModelConfigInvalid, "reference table does not match model configuration").
			WithDetail(fmt.Sprintf("table=%s config=%s", table.Key(), cfg.Name()))
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	log := t.logger.With(
		logging.String("medium", cfg.Medium.String()),
		logging.String("endpoint", cfg.Endpoint.String()),
		logging.String("kind", string(cfg.Kind)),
	)
	log.Debug("training classifier", logging.Int("rows", table.NumRows()), logging.Int("features", table.NumFeatures()))

	start := time.Now()
	model, err := fit(ctx, table, cfg)
	elapsed := time.Since(start)

	t.metrics.RecordTraining(ctx, &common.TrainingMetricParams{
		Medium:     cfg.Medium.String(),
		Endpoint:   cfg.Endpoint.String(),
		ModelKind:  string(cfg.Kind),
		Rows:       table.NumRows(),
		Features:   table.NumFeatures(),
		DurationMs: float64(elapsed.Microseconds()) / 1000,
		Success:    err == nil,
	})
	if err != nil {
		log.Error("training failed", logging.Err(err))
		return nil, trainingError(err, cfg)
	}
	log.Debug("classifier trained", logging.Duration("elapsed", elapsed))
	return model, nil
}

func fit(ctx context.Context, table *reference.Table, cfg ModelConfig) (gbt.Model, error) {
	x, y := table.Matrix(), table.Labels()
	switch cfg.Kind {
	case gbt.KindGradientBoosting:
		return gbt.FitGradientBoosting(ctx, x, y, *cfg.Classic)
	case gbt.KindHistGradientBoosting:
		return gbt.FitHistGradientBoosting(ctx, x, y, *cfg.Hist)
	}
	return nil, errors.New(errors.ErrCodeUnsupportedModelKind, fmt.Sprintf("unsupported model kind %q", cfg.Kind))
}

func trainingError(err error, cfg ModelConfig) error {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeTrainingFailure
	}
	return errors.Wrap(err, code, fmt.Sprintf("training %s classifier for %s failed", cfg.Endpoint, cfg.Medium)).
		WithDetail(fmt.Sprintf("medium=%s endpoint=%s", cfg.Medium, cfg.Endpoint))
}

var defaultTrainer = NewTrainer(nil, nil)

// Train fits cfg on table with a Trainer that neither logs nor records
// metrics.
func Train(ctx context.Context, table *reference.Table, cfg ModelConfig) (gbt.Model, error) {
	return defaultTrainer.Train(ctx, table, cfg)
}

//Personal.AI order the ending
