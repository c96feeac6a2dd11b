package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/ecowarn/internal/application/assessment"
	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// DefaultMaxBodySize bounds prediction request bodies when no limit is set.
const DefaultMaxBodySize = 1 << 20

// PredictionHandler serves risk predictions and vocabularies.
type PredictionHandler struct {
	svc         assessment.Service
	logger      logging.Logger
	errs        errorWriter
	maxBodySize int64
}

// NewPredictionHandler creates a PredictionHandler.  observer may be nil.
func NewPredictionHandler(svc assessment.Service, maxBodySize int64, observer ErrorObserver, logger logging.Logger) *PredictionHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &PredictionHandler{
		svc:         svc,
		logger:      logger,
		errs:        errorWriter{logger: logger, observer: observer},
		maxBodySize: maxBodySize,
	}
}

// PredictionRequest is the body of POST /api/v1/predictions.  Concentration
// and exposure time are pointers so an absent field is told apart from 0.
type PredictionRequest struct {
	Medium        string   `json:"medium"`
	Compound      string   `json:"compound"`
	Concentration *float64 `json:"concentration"`
	ExposureTime  *float64 `json:"exposure_time"`
	Species       string   `json:"species"`
	Tissue        string   `json:"tissue"`
}

// ScenarioInput converts the body into the raw form validated by
// exposure.ParseScenario.
func (p PredictionRequest) ScenarioInput() exposure.ScenarioInput {
	return exposure.ScenarioInput{
		Medium:        p.Medium,
		Compound:      p.Compound,
		Concentration: formatAmount(p.Concentration),
		ExposureTime:  formatAmount(p.ExposureTime),
		Species:       p.Species,
		Tissue:        p.Tissue,
	}
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// Register mounts the prediction and vocabulary routes on r.
func (h *PredictionHandler) Register(r chi.Router) {
	r.Post("/predictions", h.Create)
	r.Get("/vocabularies/{medium}", h.GetVocabulary)
}

// Create handles POST /api/v1/predictions.
func (h *PredictionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PredictionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.errs.write(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	scenario, err := exposure.ParseScenario(req.ScenarioInput())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	result, err := h.svc.Assess(r.Context(), scenario)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetVocabulary handles GET /api/v1/vocabularies/{medium}.
func (h *PredictionHandler) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	medium, err := exposure.ParseMedium(chi.URLParam(r, "medium"))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	view, err := h.svc.Vocabulary(medium)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

//Personal.AI order the ending
