package assessment

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/domain/reference"
	"github.com/turtacn/ecowarn/internal/intelligence/common"
	"github.com/turtacn/ecowarn/internal/intelligence/ecotox"
	"github.com/turtacn/ecowarn/internal/intelligence/gbt"
	"github.com/turtacn/ecowarn/internal/testutil"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// MockModelProvider is a mock implementation of ecotox.ModelProvider.
type MockModelProvider struct {
	mock.Mock
}

func (m *MockModelProvider) Model(ctx context.Context, table *reference.Table, cfg ecotox.ModelConfig) (gbt.Model, error) {
	args := m.Called(ctx, table, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(gbt.Model), args.Error(1)
}

type fixedModel struct {
	class, width int
}

func (f fixedModel) Predict([]float64) (int, error)            { return f.class, nil }
func (f fixedModel) PredictProba([]float64) ([]float64, error) { return []float64{1}, nil }
func (f fixedModel) Classes() []int                            { return []int{f.class} }
func (f fixedModel) NumFeatures() int                          { return f.width }

// memoryCache is an in-process ResultCache.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
	sets  int
}

func newMemoryCache() *memoryCache { return &memoryCache{items: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return errors.NotFound("cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = raw
	c.sets++
	c.mu.Unlock()
	return nil
}

func tebuconazoleGill(conc float64) exposure.Scenario {
	return exposure.Scenario{
		Medium:        exposure.MediumAquatic,
		Compound:      "Compounds_Tebuconazole",
		Concentration: conc,
		ExposureTime:  3,
		Tissue:        "Tissues_Gill",
	}
}

func TestNewService_RequiresSource(t *testing.T) {
	_, err := NewService(Options{})
	assert.True(t, errors.IsValidation(err))
}

func TestAssess_EndToEndWithTrainedModels(t *testing.T) {
	metrics := common.NewInMemoryEngineMetrics()
	logger := testutil.NewMockLogger()
	svc, err := NewService(Options{Source: testutil.ReferenceSource(90), Metrics: metrics, Logger: logger})
	require.NoError(t, err)

	res, err := svc.Assess(context.Background(), tebuconazoleGill(12.5))
	require.NoError(t, err)
	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, EndpointResult{Class: 2, Label: "Stimulation"}, res.MDA)
	assert.Equal(t, EndpointResult{Class: 2, Label: "Stimulation"}, res.ROS)
	assert.Equal(t, exposure.VerdictPotentialRisk, res.Verdict)
	assert.Equal(t, "Potential Risk", res.VerdictLabel)
	assert.False(t, res.Cached)

	res, err = svc.Assess(context.Background(), tebuconazoleGill(1.5))
	require.NoError(t, err)
	assert.Equal(t, ecotox.Prediction{MDAClass: 0, ROSClass: 0, Verdict: exposure.VerdictNoRisk}, res.Prediction())

	assert.Len(t, metrics.Trainings(), 4, "every assessment retrains both classifiers")
	assert.True(t, logger.HasMessage("info", "assessment completed"))
	stats := metrics.GetCurrentStats()
	assert.Equal(t, int64(1), stats.Verdicts[exposure.VerdictPotentialRisk.String()])
}

func TestAssess_StubModelsPinVerdict(t *testing.T) {
	width := len(testutil.FixtureColumns)
	provider := new(MockModelProvider)
	provider.On("Model", mock.Anything, mock.MatchedBy(func(tb *reference.Table) bool { return tb.Endpoint == exposure.EndpointMDA }), mock.Anything).
		Return(fixedModel{class: 1, width: width}, nil).Once()
	provider.On("Model", mock.Anything, mock.MatchedBy(func(tb *reference.Table) bool { return tb.Endpoint == exposure.EndpointROS }), mock.Anything).
		Return(fixedModel{class: 2, width: width}, nil).Once()

	svc, err := NewService(Options{Source: testutil.ReferenceSource(30), Provider: provider})
	require.NoError(t, err)

	res, err := svc.Assess(context.Background(), tebuconazoleGill(10))
	require.NoError(t, err)
	assert.Equal(t, ecotox.Prediction{MDAClass: 1, ROSClass: 2, Verdict: exposure.VerdictPotentialRisk}, res.Prediction())
	assert.Equal(t, "Inhibition", res.MDA.Label)
	provider.AssertExpectations(t)
}

func TestAssess_ValidationBeforeAnyWork(t *testing.T) {
	provider := new(MockModelProvider)
	svc, err := NewService(Options{Source: testutil.ReferenceSource(30), Provider: provider})
	require.NoError(t, err)

	s := tebuconazoleGill(-1)
	_, err = svc.Assess(context.Background(), s)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	s = tebuconazoleGill(1)
	s.Medium = "air"
	_, err = svc.Assess(context.Background(), s)
	assert.True(t, errors.IsValidation(err))
	provider.AssertNotCalled(t, "Model", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssess_WithoutSpeciesOrTissueStillPredicts(t *testing.T) {
	width := len(testutil.FixtureColumns)
	provider := new(MockModelProvider)
	provider.On("Model", mock.Anything, mock.Anything, mock.Anything).Return(fixedModel{class: 0, width: width}, nil).Twice()
	svc, err := NewService(Options{Source: testutil.ReferenceSource(30), Provider: provider})
	require.NoError(t, err)

	s := tebuconazoleGill(10)
	s.ExposureTime = 7
	s.Tissue = ""
	res, err := svc.Assess(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, exposure.VerdictNoRisk, res.Verdict)
	provider.AssertExpectations(t)
}

func TestAssess_MissingReferenceDataBeforeTraining(t *testing.T) {
	src := testutil.ReferenceSource(30)
	src.Delete(exposure.MediumAquatic, exposure.EndpointROS)
	provider := new(MockModelProvider)
	svc, err := NewService(Options{Source: src, Provider: provider})
	require.NoError(t, err)

	_, err = svc.Assess(context.Background(), tebuconazoleGill(1))
	require.Error(t, err)
	assert.True(t, errors.IsMissingReferenceData(err))
	provider.AssertNotCalled(t, "Model", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssess_SchemaMismatchBeforeTraining(t *testing.T) {
	src := testutil.ReferenceSource(30)
	broken := testutil.ReferenceTable(exposure.MediumSoil, exposure.EndpointMDA, 30)
	broken.FeatureNames[0] = "Dose"
	src.Put(broken)
	provider := new(MockModelProvider)
	svc, err := NewService(Options{Source: src, Provider: provider})
	require.NoError(t, err)

	s := tebuconazoleGill(1)
	s.Medium = exposure.MediumSoil
	_, err = svc.Assess(context.Background(), s)
	require.Error(t, err)
	assert.True(t, errors.IsSchemaMismatch(err))
	assert.Contains(t, err.Error(), "endpoint=MDA")
	provider.AssertNotCalled(t, "Model", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssess_TrainingFailurePropagates(t *testing.T) {
	src := testutil.ReferenceSource(60)
	single := testutil.ReferenceTable(exposure.MediumAquatic, exposure.EndpointROS, 60)
	for i := range single.Rows {
		single.Rows[i].Label = 0
	}
	src.Put(single)
	svc, err := NewService(Options{Source: src})
	require.NoError(t, err)

	_, err = svc.Assess(context.Background(), tebuconazoleGill(1))
	require.Error(t, err)
	assert.True(t, errors.IsTrainingFailure(err))
}

func TestAssess_DroppedLabelsLoggedAtDebug(t *testing.T) {
	logger := testutil.NewMockLogger()
	width := len(testutil.FixtureColumns)
	provider := new(MockModelProvider)
	provider.On("Model", mock.Anything, mock.Anything, mock.Anything).Return(fixedModel{class: 0, width: width}, nil)
	svc, err := NewService(Options{Source: testutil.ReferenceSource(30), Provider: provider, Logger: logger})
	require.NoError(t, err)

	s := tebuconazoleGill(1)
	s.Species = "Species_Carp"
	_, err = svc.Assess(context.Background(), s)
	require.NoError(t, err)

	var found bool
	for _, m := range logger.MessagesAt("debug") {
		if m.Message == "labels absent from reference table were dropped" {
			labels, _ := m.Field("labels")
			assert.Equal(t, []string{"Species_Carp"}, labels)
			found = true
		}
	}
	assert.True(t, found)
}

func TestAssess_ResultCache(t *testing.T) {
	width := len(testutil.FixtureColumns)
	provider := new(MockModelProvider)
	provider.On("Model", mock.Anything, mock.Anything, mock.Anything).Return(fixedModel{class: 2, width: width}, nil).Times(2)
	cache := newMemoryCache()
	metrics := common.NewInMemoryEngineMetrics()
	svc, err := NewService(Options{Source: testutil.ReferenceSource(30), Provider: provider, Cache: cache, Metrics: metrics})
	require.NoError(t, err)

	first, err := svc.Assess(context.Background(), tebuconazoleGill(4))
	require.NoError(t, err)
	second, err := svc.Assess(context.Background(), tebuconazoleGill(4))
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.NotEqual(t, first.RequestID, second.RequestID)
	assert.Equal(t, first.Prediction(), second.Prediction())
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, int64(1), metrics.CacheHits())
	provider.AssertExpectations(t)
}

func TestResultKey(t *testing.T) {
	a, err := ResultKey(tebuconazoleGill(4), "aaaaaaaaaaaaaaaaaaaa", "bbbb")
	require.NoError(t, err)
	b, err := ResultKey(tebuconazoleGill(4), "aaaaaaaaaaaaaaaaaaaa", "bbbb")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "result:aquatic:aaaaaaaaaaaaaaaa:bbbb:")

	c, _ := ResultKey(tebuconazoleGill(5), "aaaaaaaaaaaaaaaaaaaa", "bbbb")
	assert.NotEqual(t, a, c)
	d, _ := ResultKey(tebuconazoleGill(4), "aaaaaaaaaaaaaaaaaaaa", "cccc")
	assert.NotEqual(t, a, d)
}

func TestVocabulary(t *testing.T) {
	svc, err := NewService(Options{Source: reference.NewMemorySource()})
	require.NoError(t, err)

	v, err := svc.Vocabulary(exposure.MediumSoil)
	require.NoError(t, err)
	assert.Equal(t, exposure.VocabularyFor(exposure.MediumSoil).Compounds, v.Compounds)

	_, err = svc.Vocabulary("marine")
	assert.True(t, errors.IsValidation(err))
}

type failingSource struct{ reference.MemorySource }

func (*failingSource) Check(context.Context) error { return errors.New(errors.ErrCodeExternalService, "bucket unreachable") }

func TestReady(t *testing.T) {
	svc, err := NewService(Options{Source: reference.NewMemorySource()})
	require.NoError(t, err)
	assert.NoError(t, svc.Ready(context.Background()))

	svc, err = NewService(Options{Source: &failingSource{}})
	require.NoError(t, err)
	err = svc.Ready(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

//Personal.AI order the ending
