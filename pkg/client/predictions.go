package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// Verdict values returned by the server.
const (
	VerdictNoRisk        = "NO_RISK"
	VerdictPotentialRisk = "POTENTIAL_RISK"
)

// Media accepted by the server.
const (
	MediumAquatic = "aquatic"
	MediumSoil    = "soil"
)

// PredictionRequest describes one exposure scenario.  Compound, Species and
// Tissue use the full column names listed by Vocabularies().Get; at least one
// of Species or Tissue must be set.
type PredictionRequest struct {
	Medium        string  `json:"medium"`
	Compound      string  `json:"compound"`
	Concentration float64 `json:"concentration"`
	ExposureTime  float64 `json:"exposure_time"`
	Species       string  `json:"species,omitempty"`
	Tissue        string  `json:"tissue,omitempty"`
}

// Scenario is the scenario echoed back by the server.
type Scenario struct {
	Medium        string  `json:"medium"`
	Compound      string  `json:"compound"`
	Concentration float64 `json:"concentration"`
	ExposureTime  float64 `json:"exposure_time"`
	Species       string  `json:"species"`
	Tissue        string  `json:"tissue"`
}

// EndpointResult is the class predicted for one biomarker endpoint.
type EndpointResult struct {
	Class int    `json:"class"`
	Label string `json:"label"`
}

// PredictionResult is the response of Create.
type PredictionResult struct {
	RequestID    string         `json:"request_id"`
	Scenario     Scenario       `json:"scenario"`
	MDA          EndpointResult `json:"mda"`
	ROS          EndpointResult `json:"ros"`
	Verdict      string         `json:"verdict"`
	VerdictLabel string         `json:"verdict_label"`
	DurationMs   float64        `json:"duration_ms"`
	Cached       bool           `json:"cached"`
}

// PotentialRisk reports whether the verdict is POTENTIAL_RISK.
func (r *PredictionResult) PotentialRisk() bool {
	return r != nil && r.Verdict == VerdictPotentialRisk
}

// PredictionsClient runs risk predictions.
type PredictionsClient struct {
	client *Client
}

// Create submits a scenario and returns the early-warning result.
func (pc *PredictionsClient) Create(ctx context.Context, req *PredictionRequest) (*PredictionResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var out PredictionResult
	if err := pc.client.post(ctx, "/predictions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PredictionRequest) validate() error {
	if r == nil {
		return errors.InvalidParam("prediction request is nil")
	}
	if err := validateMedium(r.Medium); err != nil {
		return err
	}
	if strings.TrimSpace(r.Compound) == "" {
		return errors.Validation("compound", "compound is required")
	}
	if strings.TrimSpace(r.Species) == "" && strings.TrimSpace(r.Tissue) == "" {
		return errors.Validation("species", "species or tissue is required")
	}
	return nil
}

func validateMedium(m string) error {
	switch m {
	case MediumAquatic, MediumSoil:
		return nil
	case "":
		return errors.Validation("medium", "medium is required")
	default:
		return errors.Validation("medium", "unknown medium "+url.PathEscape(m))
	}
}

//Personal.AI order the ending
