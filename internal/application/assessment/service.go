// Package assessment provides the application service behind the CLI and the
// HTTP API: it loads both reference tables of a medium, encodes the scenario
// against each, obtains the two endpoint classifiers and combines their
// predictions into an early-warning verdict.
package assessment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/domain/reference"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/internal/intelligence/common"
	"github.com/turtacn/ecowarn/internal/intelligence/ecotox"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// Service defines the application operations of the risk engine.
type Service interface {
	// Assess runs one prediction.  Every failure aborts with a typed error and
	// no partial result.
	Assess(ctx context.Context, scenario exposure.Scenario) (*Result, error)

	// Vocabulary returns the selectable categories of medium.
	Vocabulary(medium exposure.Medium) (*VocabularyView, error)

	// Ready reports whether reference data can be served.
	Ready(ctx context.Context) error
}

// ResultCache stores finished results.  Get returns an error carrying
// ErrCodeNotFound on a miss.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// EndpointResult is the class emitted for one endpoint.
type EndpointResult struct {
	Class int    `json:"class"`
	Label string `json:"label"`
}

// Result is the outcome of Assess.
type Result struct {
	RequestID    string               `json:"request_id"`
	Scenario     exposure.Scenario    `json:"scenario"`
	MDA          EndpointResult       `json:"mda"`
	ROS          EndpointResult       `json:"ros"`
	Verdict      exposure.RiskVerdict `json:"verdict"`
	VerdictLabel string               `json:"verdict_label"`
	DurationMs   float64              `json:"duration_ms"`
	Cached       bool                 `json:"cached"`
}

// Prediction returns the engine-level view of r.
func (r *Result) Prediction() ecotox.Prediction {
	return ecotox.Prediction{MDAClass: r.MDA.Class, ROSClass: r.ROS.Class, Verdict: r.Verdict}
}

// VocabularyView lists the choices offered for a medium.  Species and tissue
// are optional; the empty choice means no selection.
type VocabularyView struct {
	Medium    exposure.Medium `json:"medium"`
	Compounds []string        `json:"compounds"`
	Species   []string        `json:"species"`
	Tissues   []string        `json:"tissues"`
}

// Options wires the collaborators of the service.  Only Source is required.
type Options struct {
	Source    reference.Source
	Provider  ecotox.ModelProvider
	Predictor *ecotox.Predictor
	Cache     ResultCache
	CacheTTL  time.Duration
	Metrics   common.EngineMetrics
	Logger    logging.Logger
}

// DefaultCacheTTL applies when Options.CacheTTL is zero.
const DefaultCacheTTL = 10 * time.Minute

type serviceImpl struct {
	source    reference.Source
	provider  ecotox.ModelProvider
	predictor *ecotox.Predictor
	cache     ResultCache
	cacheTTL  time.Duration
	metrics   common.EngineMetrics
	logger    logging.Logger
}

// NewService creates the assessment service.
func NewService(opts Options) (Service, error) {
	if opts.Source == nil {
		return nil, errors.InvalidParam("assessment service needs a reference source")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = common.NewNoopEngineMetrics()
	}
	if opts.Provider == nil {
		opts.Provider = ecotox.NewRetrainingProvider(ecotox.NewTrainer(opts.Logger, opts.Metrics))
	}
	if opts.Predictor == nil {
		opts.Predictor = ecotox.NewPredictor(opts.Logger, opts.Metrics)
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &serviceImpl{
		source:    opts.Source,
		provider:  opts.Provider,
		predictor: opts.Predictor,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		metrics:   opts.Metrics,
		logger:    opts.Logger.Named("assessment"),
	}, nil
}

func (s *serviceImpl) Assess(ctx context.Context, scenario exposure.Scenario) (*Result, error) {
	start := time.Now()
	if err := scenario.ValidateValues(); err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	log := s.logger.With(logging.String("request_id", reqID), logging.String("medium", scenario.Medium.String()))

	res, err := s.assess(ctx, log, scenario)
	if err != nil {
		log.Error("assessment failed", logging.Err(err), logging.String("code", errors.GetCode(err).String()))
		return nil, err
	}
	res.RequestID = reqID
	res.DurationMs = float64(time.Since(start).Microseconds()) / 1000

	s.metrics.RecordRiskAssessment(ctx, scenario.Medium.String(), res.Verdict.String(), res.DurationMs)
	log.Info("assessment completed",
		logging.Int("mda_class", res.MDA.Class),
		logging.Int("ros_class", res.ROS.Class),
		logging.String("verdict", res.Verdict.String()),
		logging.Bool("cached", res.Cached),
		logging.Float64("duration_ms", res.DurationMs),
	)
	return res, nil
}

func (s *serviceImpl) assess(ctx context.Context, log logging.Logger, scenario exposure.Scenario) (*Result, error) {
	mdaTable, err := s.source.Load(ctx, scenario.Medium, exposure.EndpointMDA)
	if err != nil {
		return nil, err
	}
	rosTable, err := s.source.Load(ctx, scenario.Medium, exposure.EndpointROS)
	if err != nil {
		return nil, err
	}
	mdaCfg, err := ecotox.ConfigFor(scenario.Medium, exposure.EndpointMDA)
	if err != nil {
		return nil, err
	}
	rosCfg, err := ecotox.ConfigFor(scenario.Medium, exposure.EndpointROS)
	if err != nil {
		return nil, err
	}

	cacheKey := s.cacheKey(log, scenario, mdaTable, rosTable)
	if cached := s.lookup(ctx, log, cacheKey); cached != nil {
		return cached, nil
	}

	vecMDA, err := s.encode(log, scenario, mdaTable)
	if err != nil {
		return nil, err
	}
	vecROS, err := s.encode(log, scenario, rosTable)
	if err != nil {
		return nil, err
	}

	mdaModel, err := s.provider.Model(ctx, mdaTable, mdaCfg)
	if err != nil {
		return nil, err
	}
	rosModel, err := s.provider.Model(ctx, rosTable, rosCfg)
	if err != nil {
		return nil, err
	}

	pred, err := s.predictor.Predict(ctx, scenario.Medium, mdaModel, rosModel, vecMDA, vecROS)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Scenario:     scenario,
		MDA:          EndpointResult{Class: pred.MDAClass, Label: exposure.ClassLabel(pred.MDAClass)},
		ROS:          EndpointResult{Class: pred.ROSClass, Label: exposure.ClassLabel(pred.ROSClass)},
		Verdict:      pred.Verdict,
		VerdictLabel: pred.Verdict.Label(),
	}
	s.store(ctx, log, cacheKey, res)
	return res, nil
}

func (s *serviceImpl) encode(log logging.Logger, scenario exposure.Scenario, table *reference.Table) (exposure.EncodedVector, error) {
	vec, err := exposure.Encode(scenario, table.FeatureNames)
	if err != nil {
		return exposure.EncodedVector{}, errors.Wrap(err, errors.CodeUnknown, "encoding scenario").
			WithDetail(fmt.Sprintf("medium=%s endpoint=%s", table.Medium, table.Endpoint))
	}
	if dropped := exposure.DroppedLabels(scenario, table.FeatureNames); len(dropped) > 0 {
		log.Debug("labels absent from reference table were dropped",
			logging.String("endpoint", table.Endpoint.String()),
			logging.Strings("labels", dropped))
	}
	return vec, nil
}

func (s *serviceImpl) cacheKey(log logging.Logger, scenario exposure.Scenario, mdaTable, rosTable *reference.Table) string {
	if s.cache == nil {
		return ""
	}
	fpMDA, err := mdaTable.Fingerprint()
	if err != nil {
		log.Debug("result caching skipped", logging.Err(err))
		return ""
	}
	fpROS, err := rosTable.Fingerprint()
	if err != nil {
		log.Debug("result caching skipped", logging.Err(err))
		return ""
	}
	key, err := ResultKey(scenario, fpMDA, fpROS)
	if err != nil {
		log.Debug("result caching skipped", logging.Err(err))
		return ""
	}
	return key
}

func (s *serviceImpl) lookup(ctx context.Context, log logging.Logger, key string) *Result {
	if key == "" {
		return nil
	}
	var res Result
	err := s.cache.Get(ctx, key, &res)
	switch {
	case err == nil:
		s.metrics.RecordCacheAccess(ctx, true, "results")
		res.Cached = true
		return &res
	case errors.IsNotFound(err):
		s.metrics.RecordCacheAccess(ctx, false, "results")
	default:
		log.Warn("result cache unavailable", logging.Err(err))
	}
	return nil
}

func (s *serviceImpl) store(ctx context.Context, log logging.Logger, key string, res *Result) {
	if key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, res, s.cacheTTL); err != nil {
		log.Warn("result cache write failed", logging.Err(err))
	}
}

// ResultKey derives the cache key of a scenario under two table fingerprints.
// The scenario is hashed in canonical JSON form.
func ResultKey(scenario exposure.Scenario, fpMDA, fpROS string) (string, error) {
	raw, err := json.Marshal(scenario)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "encoding scenario")
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "canonicalising scenario")
	}
	sum := sha256.Sum256(canon)
	return fmt.Sprintf("%s%s:%s:%s", ResultPrefix(scenario.Medium), short(fpMDA), short(fpROS), hex.EncodeToString(sum[:16])), nil
}

// ResultPrefix is the key prefix shared by every cached verdict of a medium.
func ResultPrefix(m exposure.Medium) string {
	return "result:" + m.String() + ":"
}

func short(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}

func (s *serviceImpl) Vocabulary(medium exposure.Medium) (*VocabularyView, error) {
	if !medium.IsValid() {
		return nil, errors.Validation("medium", fmt.Sprintf("unsupported medium %q", medium))
	}
	v := exposure.VocabularyFor(medium)
	return &VocabularyView{Medium: medium, Compounds: v.Compounds, Species: v.Species, Tissues: v.Tissues}, nil
}

func (s *serviceImpl) Ready(ctx context.Context) error {
	if hc, ok := s.source.(reference.HealthChecker); ok {
		if err := hc.Check(ctx); err != nil {
			return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "reference source not ready")
		}
	}
	return nil
}

//Personal.AI order the ending
