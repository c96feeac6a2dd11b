package ecotox

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/internal/intelligence/common"
	"github.com/turtacn/ecowarn/internal/intelligence/gbt"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// Prediction is the outcome of one scenario: the class emitted by each
// endpoint classifier and the combined verdict.
type Prediction struct {
	MDAClass int                  `json:"mda_class"`
	ROSClass int                  `json:"ros_class"`
	Verdict  exposure.RiskVerdict `json:"verdict"`
}

// Predictor runs both endpoint classifiers and applies the risk rule.  Safe
// for concurrent use.
type Predictor struct {
	logger  logging.Logger
	metrics common.EngineMetrics
}

// NewPredictor creates a Predictor.  nil collaborators are replaced by no-ops.
func NewPredictor(logger logging.Logger, metrics common.EngineMetrics) *Predictor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopEngineMetrics()
	}
	return &Predictor{logger: logger.Named("predictor"), metrics: metrics}
}

// Predict classifies vecMDA with mdaModel and vecROS with rosModel, then
// combines both classes.  A class outside its endpoint's domain is passed
// through unchanged and logged as a warning; the rule then decides.
func (p *Predictor) Predict(ctx context.Context, medium exposure.Medium, mdaModel, rosModel gbt.Model, vecMDA, vecROS exposure.EncodedVector) (Prediction, error) {
	mda, err := p.classify(ctx, medium, exposure.EndpointMDA, mdaModel, vecMDA)
	if err != nil {
		return Prediction{}, err
	}
	ros, err := p.classify(ctx, medium, exposure.EndpointROS, rosModel, vecROS)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{MDAClass: mda, ROSClass: ros, Verdict: exposure.CombineVerdict(mda, ros)}, nil
}

func (p *Predictor) classify(ctx context.Context, medium exposure.Medium, endpoint exposure.Endpoint, model gbt.Model, vec exposure.EncodedVector) (int, error) {
	detail := fmt.Sprintf("medium=%s endpoint=%s", medium, endpoint)
	if model == nil {
		return 0, errors.New(errors.ErrCodeInferenceFailed, "no fitted model").WithDetail(detail)
	}
	if vec.Len() != model.NumFeatures() {
		return 0, errors.New(errors.ErrCodeInferenceFailed,
			fmt.Sprintf("encoded vector has %d features, model expects %d", vec.Len(), model.NumFeatures())).
			WithDetail(detail)
	}

	start := time.Now()
	class, err := model.Predict(vec.Values)
	params := &common.InferenceMetricParams{
		Medium:     medium.String(),
		Endpoint:   endpoint.String(),
		Class:      class,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
		Success:    err == nil,
	}
	p.metrics.RecordInference(ctx, params)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInferenceFailed, fmt.Sprintf("%s inference failed", endpoint)).
			WithDetail(detail)
	}
	if !endpoint.InDomain(class) {
		p.logger.Warn("classifier emitted a class outside its endpoint domain",
			logging.String("medium", medium.String()),
			logging.String("endpoint", endpoint.String()),
			logging.Int("class", class),
			logging.Any("domain", endpoint.Classes()),
		)
	}
	return class, nil
}

// Predict runs both classifiers with a Predictor that logs through the
// process default logger and records no metrics.
func Predict(mdaModel, rosModel gbt.Model, vecMDA, vecROS exposure.EncodedVector) (Prediction, error) {
	return NewPredictor(logging.Default(), nil).Predict(context.Background(), "", mdaModel, rosModel, vecMDA, vecROS)
}

//Personal.AI order the ending
