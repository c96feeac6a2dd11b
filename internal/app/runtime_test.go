package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ecowarn/internal/config"
	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/domain/reference"
	"github.com/turtacn/ecowarn/internal/testutil"
	"github.com/turtacn/ecowarn/pkg/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteReferenceDir(t, dir, 90)

	cfg := &config.Config{}
	cfg.Reference.Dir = dir
	cfg.Reference.Format = "csv"
	cfg.Metrics.Enabled = true
	config.ApplyDefaults(cfg)
	return cfg
}

func gillScenario(conc float64) exposure.Scenario {
	return exposure.Scenario{
		Medium:        exposure.MediumAquatic,
		Compound:      "Compounds_Tebuconazole",
		Concentration: conc,
		ExposureTime:  3,
		Tissue:        "Tissues_Gill",
	}
}

func newRuntime(t *testing.T, cfg *config.Config) (*Runtime, *testutil.MockLogger) {
	t.Helper()
	log := testutil.NewMockLogger()
	rt, err := NewRuntime(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt, log
}

func TestNewRuntime_FilesystemDefaults(t *testing.T) {
	rt, log := newRuntime(t, testConfig(t))

	assert.Nil(t, rt.Models, "model cache is off by default")
	assert.NotNil(t, rt.Collector)
	assert.True(t, log.HasMessage("info", "runtime initialized"))

	high, err := rt.Service.Assess(context.Background(), gillScenario(12.5))
	require.NoError(t, err)
	assert.Equal(t, 2, high.MDA.Class)
	assert.Equal(t, 2, high.ROS.Class)
	assert.Equal(t, exposure.VerdictPotentialRisk, high.Verdict)

	low, err := rt.Service.Assess(context.Background(), gillScenario(1.5))
	require.NoError(t, err)
	assert.Equal(t, exposure.VerdictNoRisk, low.Verdict)
}

func TestNewRuntime_Rejections(t *testing.T) {
	_, err := NewRuntime(nil, nil)
	assert.True(t, errors.IsValidation(err))

	cfg := testConfig(t)
	cfg.Reference.Source = "ftp"
	_, err = NewRuntime(cfg, nil)
	assert.True(t, errors.IsValidation(err))

	cfg = testConfig(t)
	cfg.Cache.Results.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Redis.DialTimeout = 100 * time.Millisecond
	_, err = NewRuntime(cfg, nil)
	assert.Error(t, err)
}

func TestNewRuntime_MissingTablesSurfaceAtAssess(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reference.Dir = t.TempDir()
	rt, _ := newRuntime(t, cfg)

	_, err := rt.Service.Assess(context.Background(), gillScenario(12.5))
	assert.True(t, errors.IsMissingReferenceData(err))
	assert.NoError(t, rt.Service.Ready(context.Background()))
}

func TestRuntime_ModelCacheAndInvalidation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Models.Enabled = true
	rt, log := newRuntime(t, cfg)
	require.NotNil(t, rt.Models)

	_, err := rt.Service.Assess(context.Background(), gillScenario(12.5))
	require.NoError(t, err)
	assert.Equal(t, 2, rt.Models.Len())

	rt.OnReferenceChange(exposure.MediumAquatic, exposure.EndpointMDA)
	assert.Equal(t, 1, rt.Models.Len())
	assert.True(t, log.HasMessage("info", "reference table changed"))

	w := httptest.NewRecorder()
	rt.Handler("test").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `ecowarn_reference_changes_total{table="aquatic/MDA"} 1`)
}

func TestRuntime_WatchInvalidatesEditedTable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Models.Enabled = true
	cfg.Reference.Watch = true
	rt, _ := newRuntime(t, cfg)

	_, err := rt.Service.Assess(context.Background(), gillScenario(12.5))
	require.NoError(t, err)
	require.Equal(t, 2, rt.Models.Len())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Watch(ctx) }()

	path := filepath.Join(cfg.Reference.Dir, reference.FileName(exposure.MediumAquatic, exposure.EndpointROS, reference.FormatCSV))
	// fsnotify needs the watch registered before the write lands.
	assert.Eventually(t, func() bool {
		testutil.WriteReferenceCSV(t, path, testutil.ReferenceTable(exposure.MediumAquatic, exposure.EndpointROS, 60))
		return rt.Models.Len() == 1
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRuntime_WatchDisabledReturnsAtOnce(t *testing.T) {
	rt, _ := newRuntime(t, testConfig(t))
	assert.NoError(t, rt.Watch(context.Background()))
}

func TestRuntime_ResultCacheOnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Cache.Results.Enabled = true
	cfg.Redis.Addr = mr.Addr()
	rt, _ := newRuntime(t, cfg)

	first, err := rt.Service.Assess(context.Background(), gillScenario(12.5))
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := rt.Service.Assess(context.Background(), gillScenario(12.5))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Prediction(), second.Prediction())

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], config.DefaultRedisKeyPrefix+"result:aquatic:"), keys[0])

	w := httptest.NewRecorder()
	rt.Handler("test").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis"`)
}

func TestRuntime_ReferenceChangePurgesMediumVerdicts(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Cache.Results.Enabled = true
	cfg.Redis.Addr = mr.Addr()
	rt, log := newRuntime(t, cfg)

	ctx := context.Background()
	_, err := rt.Service.Assess(ctx, gillScenario(12.5))
	require.NoError(t, err)
	_, err = rt.Service.Assess(ctx, gillScenario(40))
	require.NoError(t, err)
	_, err = rt.Service.Assess(ctx, exposure.Scenario{
		Medium:        exposure.MediumSoil,
		Compound:      "Compounds_Carbendazim",
		Concentration: 5,
		ExposureTime:  7,
		Species:       "Species_Earthworms",
	})
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 3)

	rt.OnReferenceChange(exposure.MediumAquatic, exposure.EndpointROS)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], config.DefaultRedisKeyPrefix+"result:soil:"), keys[0])

	changed := log.MessagesAt("info")
	var purged interface{}
	for _, m := range changed {
		if m.Message == "reference table changed" {
			purged, _ = m.Field("verdicts_purged")
		}
	}
	assert.Equal(t, int64(2), purged)

	again, err := rt.Service.Assess(ctx, gillScenario(12.5))
	require.NoError(t, err)
	assert.False(t, again.Cached)
}

func TestRuntime_ReferenceChangeSurvivesRedisOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Cache.Results.Enabled = true
	cfg.Redis.Addr = mr.Addr()
	rt, log := newRuntime(t, cfg)

	mr.Close()
	rt.OnReferenceChange(exposure.MediumSoil, exposure.EndpointMDA)

	assert.True(t, log.HasMessage("warn", "purging cached verdicts failed"))
	assert.True(t, log.HasMessage("info", "reference table changed"))
}

func TestRuntime_HandlerServesPredictionsAndMetrics(t *testing.T) {
	rt, _ := newRuntime(t, testConfig(t))
	h := rt.Handler("test")

	body := `{"medium":"aquatic","compound":"Compounds_Tebuconazole","concentration":12.5,"exposure_time":3,"tissue":"Tissues_Gill"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"verdict":"POTENTIAL_RISK"`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(`{"medium":"air"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := w.Body.String()
	assert.Contains(t, out, `ecowarn_reference_load_total{source="filesystem",status="success",table="aquatic/MDA"} 1`)
	assert.Contains(t, out, `ecowarn_errors_total{code="COMMON_010",component="api"} 1`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_trainings":2`)
	assert.Contains(t, w.Body.String(), `"POTENTIAL_RISK":1`)
}

func TestRuntime_RateLimitedRequestsAreCounted(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.RateLimit = 0.001
	cfg.Server.RateBurst = 1
	rt, _ := newRuntime(t, cfg)
	h := rt.Handler("test")

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/vocabularies/soil", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `ecowarn_http_rate_limited_total{route="/api/v1"} 1`)
}

func TestRuntime_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	rt, _ := newRuntime(t, cfg)
	assert.Nil(t, rt.Collector)

	w := httptest.NewRecorder()
	rt.Handler("test").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	rt.Handler("test").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	rt.OnReferenceChange(exposure.MediumSoil, exposure.EndpointROS)
}

func TestRuntime_CloseIsIdempotent(t *testing.T) {
	rt, _ := newRuntime(t, testConfig(t))
	assert.NoError(t, rt.Close())
	assert.NoError(t, rt.Close())
}

func TestNewLogger_MapsConfig(t *testing.T) {
	log, err := NewLogger(config.LogConfig{Level: "debug", Format: "console", Output: filepath.Join(t.TempDir(), "ecowarn.log")})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

//Personal.AI order the ending
