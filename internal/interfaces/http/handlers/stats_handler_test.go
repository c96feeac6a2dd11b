package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ecowarn/internal/intelligence/common"
)

func TestStatsHandler_Get(t *testing.T) {
	m := common.NewInMemoryEngineMetrics()
	ctx := context.Background()
	m.RecordTraining(ctx, &common.TrainingMetricParams{Medium: "aquatic", Endpoint: "MDA", DurationMs: 30, Success: true})
	m.RecordTraining(ctx, &common.TrainingMetricParams{Medium: "aquatic", Endpoint: "ROS", DurationMs: 10, Success: true})
	m.RecordRiskAssessment(ctx, "aquatic", "POTENTIAL_RISK", 42)

	w := httptest.NewRecorder()
	NewStatsHandler(m).Get(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats common.EngineStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(2), stats.TotalTrainings)
	assert.Equal(t, 20.0, stats.AvgTrainingLatencyMs)
	assert.Equal(t, int64(1), stats.Verdicts["POTENTIAL_RISK"])
}

//Personal.AI order the ending
