package handlers

import (
	"net/http"

	"github.com/turtacn/ecowarn/internal/intelligence/common"
)

// StatsSource yields the engine's running statistics.
type StatsSource interface {
	GetCurrentStats() *common.EngineStats
}

// StatsHandler serves GET /stats: training and inference totals, recent
// training latency percentiles, cache hit rate and verdict counts.
type StatsHandler struct {
	source StatsSource
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(source StatsSource) *StatsHandler {
	return &StatsHandler{source: source}
}

// Get handles GET /stats.
func (h *StatsHandler) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.source.GetCurrentStats())
}

//Personal.AI order the ending
