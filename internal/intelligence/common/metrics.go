package common

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/stat"
)

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// EngineMetrics is the telemetry API of the risk engine.  Training, inference,
// cache lookups and finished assessments are recorded through it so the
// backend (Prometheus, in-memory, noop) can be swapped without touching the
// engine.
type EngineMetrics interface {
	// RecordTraining records one classifier fit.
	RecordTraining(ctx context.Context, params *TrainingMetricParams)

	// RecordInference records one endpoint prediction.
	RecordInference(ctx context.Context, params *InferenceMetricParams)

	// RecordCacheAccess records a hit or miss on a named cache.
	RecordCacheAccess(ctx context.Context, hit bool, cache string)

	// RecordRiskAssessment records a completed prediction and its verdict.
	RecordRiskAssessment(ctx context.Context, medium, verdict string, durationMs float64)

	// GetCurrentStats returns a point-in-time snapshot.  It backs the
	// /stats endpoint.
	GetCurrentStats() *EngineStats
}

// ---------------------------------------------------------------------------
// Parameter structs
// ---------------------------------------------------------------------------

// TrainingMetricParams describes one classifier fit.
type TrainingMetricParams struct {
	Medium     string  `json:"medium"`
	Endpoint   string  `json:"endpoint"`
	ModelKind  string  `json:"model_kind"`
	Rows       int     `json:"rows"`
	Features   int     `json:"features"`
	DurationMs float64 `json:"duration_ms"`
	Success    bool    `json:"success"`
}

// InferenceMetricParams describes one endpoint prediction.
type InferenceMetricParams struct {
	Medium     string  `json:"medium"`
	Endpoint   string  `json:"endpoint"`
	Class      int     `json:"class"`
	DurationMs float64 `json:"duration_ms"`
	Success    bool    `json:"success"`
}

// EngineStats is a point-in-time snapshot of engine metrics.  Totals and
// the average cover the whole process lifetime; the percentiles cover the
// most recent latencyWindow fits only.
type EngineStats struct {
	TotalTrainings       int64            `json:"total_trainings"`
	FailedTrainings      int64            `json:"failed_trainings"`
	AvgTrainingLatencyMs float64          `json:"avg_training_latency_ms"`
	P50TrainingMs        float64          `json:"p50_training_ms"`
	P95TrainingMs        float64          `json:"p95_training_ms"`
	P99TrainingMs        float64          `json:"p99_training_ms"`
	TotalInferences      int64            `json:"total_inferences"`
	FailedInferences     int64            `json:"failed_inferences"`
	CacheHitRate         float64          `json:"cache_hit_rate"`
	Verdicts             map[string]int64 `json:"verdicts"`
}

// ---------------------------------------------------------------------------
// Prometheus implementation
// ---------------------------------------------------------------------------

const metricsPrefix = "ecowarn_engine_"

var defaultLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

type prometheusEngineMetrics struct {
	trainingDuration   *prometheus.HistogramVec
	trainingTotal      *prometheus.CounterVec
	trainingRows       *prometheus.GaugeVec
	inferenceTotal     *prometheus.CounterVec
	predictedClass     *prometheus.CounterVec
	cacheAccessTotal   *prometheus.CounterVec
	assessmentTotal    *prometheus.CounterVec
	assessmentDuration *prometheus.HistogramVec

	latencyHist     *latencyHistogram
	trainings       atomic.Int64
	failedTrainings atomic.Int64
	inferences      atomic.Int64
	failedInfer     atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	verdicts        sync.Map // verdict -> *atomic.Int64
}

// NewPrometheusEngineMetrics creates a Prometheus-backed EngineMetrics and
// registers every collector with registerer (the default registerer when nil).
func NewPrometheusEngineMetrics(registerer prometheus.Registerer) (EngineMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &prometheusEngineMetrics{latencyHist: newLatencyHistogram()}

	m.trainingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "training_duration_milliseconds",
		Help:    "Classifier training latency in milliseconds.",
		Buckets: defaultLatencyBuckets,
	}, []string{"medium", "endpoint", "model_kind"})

	m.trainingTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "training_total",
		Help: "Total number of classifier fits.",
	}, []string{"medium", "endpoint", "status"})

	m.trainingRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: metricsPrefix + "training_rows",
		Help: "Rows in the reference table used by the latest fit.",
	}, []string{"medium", "endpoint"})

	m.inferenceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "inference_total",
		Help: "Total number of endpoint predictions.",
	}, []string{"medium", "endpoint", "status"})

	m.predictedClass = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "predicted_class_total",
		Help: "Endpoint predictions by class.",
	}, []string{"medium", "endpoint", "class"})

	m.cacheAccessTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "cache_access_total",
		Help: "Cache lookups by cache and result.",
	}, []string{"cache", "result"})

	m.assessmentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "risk_assessment_total",
		Help: "Completed risk assessments by medium and verdict.",
	}, []string{"medium", "verdict"})

	m.assessmentDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "risk_assessment_duration_milliseconds",
		Help:    "End-to-end risk assessment latency in milliseconds.",
		Buckets: defaultLatencyBuckets,
	}, []string{"medium"})

	for _, c := range []prometheus.Collector{
		m.trainingDuration, m.trainingTotal, m.trainingRows,
		m.inferenceTotal, m.predictedClass, m.cacheAccessTotal,
		m.assessmentTotal, m.assessmentDuration,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *prometheusEngineMetrics) RecordTraining(_ context.Context, p *TrainingMetricParams) {
	if p == nil {
		return
	}
	m.trainingDuration.WithLabelValues(p.Medium, p.Endpoint, p.ModelKind).Observe(p.DurationMs)
	m.trainingTotal.WithLabelValues(p.Medium, p.Endpoint, status(p.Success)).Inc()
	m.trainingRows.WithLabelValues(p.Medium, p.Endpoint).Set(float64(p.Rows))

	m.latencyHist.Observe(p.DurationMs)
	m.trainings.Add(1)
	if !p.Success {
		m.failedTrainings.Add(1)
	}
}

func (m *prometheusEngineMetrics) RecordInference(_ context.Context, p *InferenceMetricParams) {
	if p == nil {
		return
	}
	m.inferenceTotal.WithLabelValues(p.Medium, p.Endpoint, status(p.Success)).Inc()
	m.inferences.Add(1)
	if !p.Success {
		m.failedInfer.Add(1)
		return
	}
	m.predictedClass.WithLabelValues(p.Medium, p.Endpoint, classLabel(p.Class)).Inc()
}

func (m *prometheusEngineMetrics) RecordCacheAccess(_ context.Context, hit bool, cache string) {
	result := "miss"
	if hit {
		result = "hit"
		m.cacheHits.Add(1)
	} else {
		m.cacheMisses.Add(1)
	}
	m.cacheAccessTotal.WithLabelValues(cache, result).Inc()
}

func (m *prometheusEngineMetrics) RecordRiskAssessment(_ context.Context, medium, verdict string, durationMs float64) {
	m.assessmentTotal.WithLabelValues(medium, verdict).Inc()
	m.assessmentDuration.WithLabelValues(medium).Observe(durationMs)
	c, _ := m.verdicts.LoadOrStore(verdict, new(atomic.Int64))
	c.(*atomic.Int64).Add(1)
}

func (m *prometheusEngineMetrics) GetCurrentStats() *EngineStats {
	verdicts := make(map[string]int64)
	m.verdicts.Range(func(k, v any) bool {
		verdicts[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return buildStats(m.latencyHist, m.trainings.Load(), m.failedTrainings.Load(),
		m.inferences.Load(), m.failedInfer.Load(), m.cacheHits.Load(), m.cacheMisses.Load(), verdicts)
}

func buildStats(h *latencyHistogram, trainings, failedTrainings, inferences, failedInfer, hits, misses int64, verdicts map[string]int64) *EngineStats {
	s := &EngineStats{
		TotalTrainings:   trainings,
		FailedTrainings:  failedTrainings,
		TotalInferences:  inferences,
		FailedInferences: failedInfer,
		P50TrainingMs:    h.Percentile(50),
		P95TrainingMs:    h.Percentile(95),
		P99TrainingMs:    h.Percentile(99),
		Verdicts:         verdicts,
	}
	if n := h.Count(); n > 0 {
		s.AvgTrainingLatencyMs = h.Sum() / float64(n)
	}
	if hits+misses > 0 {
		s.CacheHitRate = float64(hits) / float64(hits+misses)
	}
	return s
}

func classLabel(c int) string {
	switch c {
	case 0:
		return "0"
	case 1:
		return "1"
	case 2:
		return "2"
	default:
		return "other"
	}
}

// ---------------------------------------------------------------------------
// Noop implementation
// ---------------------------------------------------------------------------

type noopEngineMetrics struct{}

// NewNoopEngineMetrics returns an EngineMetrics that records nothing.
func NewNoopEngineMetrics() EngineMetrics { return noopEngineMetrics{} }

func (noopEngineMetrics) RecordTraining(context.Context, *TrainingMetricParams)         {}
func (noopEngineMetrics) RecordInference(context.Context, *InferenceMetricParams)       {}
func (noopEngineMetrics) RecordCacheAccess(context.Context, bool, string)               {}
func (noopEngineMetrics) RecordRiskAssessment(context.Context, string, string, float64) {}
func (noopEngineMetrics) GetCurrentStats() *EngineStats {
	return &EngineStats{Verdicts: map[string]int64{}}
}

// ---------------------------------------------------------------------------
// In-memory implementation (for tests)
// ---------------------------------------------------------------------------

// InMemoryEngineMetrics keeps every recorded event for inspection.
type InMemoryEngineMetrics struct {
	mu          sync.Mutex
	trainings   []TrainingMetricParams
	inferences  []InferenceMetricParams
	cacheHits   int64
	cacheMisses int64
	verdicts    map[string]int64
	latencyHist *latencyHistogram
}

// NewInMemoryEngineMetrics returns an empty InMemoryEngineMetrics.
func NewInMemoryEngineMetrics() *InMemoryEngineMetrics {
	return &InMemoryEngineMetrics{verdicts: make(map[string]int64), latencyHist: newLatencyHistogram()}
}

func (m *InMemoryEngineMetrics) RecordTraining(_ context.Context, p *TrainingMetricParams) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainings = append(m.trainings, *p)
	m.latencyHist.Observe(p.DurationMs)
}

func (m *InMemoryEngineMetrics) RecordInference(_ context.Context, p *InferenceMetricParams) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inferences = append(m.inferences, *p)
}

func (m *InMemoryEngineMetrics) RecordCacheAccess(_ context.Context, hit bool, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
}

func (m *InMemoryEngineMetrics) RecordRiskAssessment(_ context.Context, _, verdict string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts[verdict]++
}

func (m *InMemoryEngineMetrics) GetCurrentStats() *EngineStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var failedT, failedI int64
	for _, t := range m.trainings {
		if !t.Success {
			failedT++
		}
	}
	for _, i := range m.inferences {
		if !i.Success {
			failedI++
		}
	}
	verdicts := make(map[string]int64, len(m.verdicts))
	for k, v := range m.verdicts {
		verdicts[k] = v
	}
	return buildStats(m.latencyHist, int64(len(m.trainings)), failedT,
		int64(len(m.inferences)), failedI, m.cacheHits, m.cacheMisses, verdicts)
}

// Trainings returns a copy of the recorded fits.
func (m *InMemoryEngineMetrics) Trainings() []TrainingMetricParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TrainingMetricParams(nil), m.trainings...)
}

// Inferences returns a copy of the recorded predictions.
func (m *InMemoryEngineMetrics) Inferences() []InferenceMetricParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]InferenceMetricParams(nil), m.inferences...)
}

// CacheHits returns the number of recorded cache hits.
func (m *InMemoryEngineMetrics) CacheHits() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheHits
}

// CacheMisses returns the number of recorded cache misses.
func (m *InMemoryEngineMetrics) CacheMisses() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheMisses
}

// ---------------------------------------------------------------------------
// latencyHistogram
// ---------------------------------------------------------------------------

// latencyWindow bounds the samples kept for percentiles.
const latencyWindow = 1024

// latencyHistogram keeps the last latencyWindow samples in a ring plus
// lifetime count and sum.
type latencyHistogram struct {
	mu      sync.Mutex
	window  []float64
	next    int
	count   int64
	sum     float64
	scratch []float64
}

func newLatencyHistogram() *latencyHistogram {
	return &latencyHistogram{window: make([]float64, 0, latencyWindow)}
}

func (h *latencyHistogram) Observe(durationMs float64) {
	h.mu.Lock()
	if len(h.window) < cap(h.window) {
		h.window = append(h.window, durationMs)
	} else {
		h.window[h.next] = durationMs
	}
	h.next = (h.next + 1) % cap(h.window)
	h.count++
	h.sum += durationMs
	h.mu.Unlock()
}

// Percentile interpolates linearly between the nearest ranks of the window.
func (h *latencyHistogram) Percentile(p float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.window) == 0 {
		return 0
	}
	h.scratch = append(h.scratch[:0], h.window...)
	sort.Float64s(h.scratch)
	if p <= 0 {
		return h.scratch[0]
	}
	if p >= 100 {
		return h.scratch[len(h.scratch)-1]
	}
	return stat.Quantile(p/100, stat.LinInterp, h.scratch, nil)
}

func (h *latencyHistogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func (h *latencyHistogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

//Personal.AI order the ending
