package exposure

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// Scenario is one risk-assessment request with every field already parsed.
// An empty Compound, Species or Tissue contributes no one-hot feature.
type Scenario struct {
	Medium        Medium  `json:"medium"`
	Compound      string  `json:"compound"`
	Concentration float64 `json:"concentration"`
	ExposureTime  float64 `json:"exposure_time"`
	Species       string  `json:"species"`
	Tissue        string  `json:"tissue"`
}

// ScenarioInput is the raw, string-typed form submitted by the CLI and the
// HTTP API before validation.
type ScenarioInput struct {
	Medium        string `json:"medium"`
	Compound      string `json:"compound"`
	Concentration string `json:"concentration"`
	ExposureTime  string `json:"exposure_time"`
	Species       string `json:"species"`
	Tissue        string `json:"tissue"`
}

// ParseScenario validates raw input the way the input form does and returns
// the typed Scenario.  Concentration and exposure time are required, numeric,
// finite and non-negative; at least one of species or tissue must be chosen;
// every non-empty selection must belong to the medium's vocabulary.  Species
// and tissue are whitespace-trimmed, the compound is kept verbatim.
func ParseScenario(in ScenarioInput) (Scenario, error) {
	medium, err := ParseMedium(in.Medium)
	if err != nil {
		return Scenario{}, err
	}

	concStr := strings.TrimSpace(in.Concentration)
	timeStr := strings.TrimSpace(in.ExposureTime)
	if concStr == "" || timeStr == "" {
		return Scenario{}, errors.Validation("concentration,exposure_time", "Concentrations and Exposure Time cannot be empty")
	}
	conc, err := parseAmount("concentration", concStr)
	if err != nil {
		return Scenario{}, err
	}
	expo, err := parseAmount("exposure_time", timeStr)
	if err != nil {
		return Scenario{}, err
	}

	s := Scenario{
		Medium:        medium,
		Compound:      in.Compound,
		Concentration: conc,
		ExposureTime:  expo,
		Species:       strings.TrimSpace(in.Species),
		Tissue:        strings.TrimSpace(in.Tissue),
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

func parseAmount(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Validation(field, "Concentrations and Exposure Time must be numeric")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Validation(field, "value must be finite")
	}
	if v < 0 {
		return 0, errors.Validation(field, fmt.Sprintf("value must be >= 0, got %g", v))
	}
	return v, nil
}

// Validate checks a typed Scenario against the same rules as ParseScenario.
// Adapters that build a Scenario directly use it before invoking the engine.
func (s Scenario) Validate() error {
	if err := s.ValidateValues(); err != nil {
		return err
	}
	if s.Species == "" && s.Tissue == "" {
		return errors.Validation("species,tissue", "At least one of Species or Tissue must be selected")
	}
	vocab := VocabularyFor(s.Medium)
	switch {
	case s.Compound != "" && !vocab.HasCompound(s.Compound):
		return errors.Validation("compound", fmt.Sprintf("%q is not a %s compound", s.Compound, s.Medium))
	case s.Species != "" && !vocab.HasSpecies(s.Species):
		return errors.Validation("species", fmt.Sprintf("%q is not a %s species", s.Species, s.Medium))
	case s.Tissue != "" && !vocab.HasTissue(s.Tissue):
		return errors.Validation("tissue", fmt.Sprintf("%q is not a %s tissue", s.Tissue, s.Medium))
	}
	return nil
}

// ValidateValues checks only what the engine needs to run: a supported
// medium and finite, non-negative amounts.  Empty or unknown selections pass;
// they contribute no one-hot feature.
func (s Scenario) ValidateValues() error {
	if !s.Medium.IsValid() {
		return errors.Validation("medium", fmt.Sprintf("unsupported medium %q", s.Medium))
	}
	if math.IsNaN(s.Concentration) || math.IsInf(s.Concentration, 0) || s.Concentration < 0 {
		return errors.Validation("concentration", "value must be finite and >= 0")
	}
	if math.IsNaN(s.ExposureTime) || math.IsInf(s.ExposureTime, 0) || s.ExposureTime < 0 {
		return errors.Validation("exposure_time", "value must be finite and >= 0")
	}
	return nil
}

// Labels returns the non-empty categorical labels of the scenario in
// compound, species, tissue order.
func (s Scenario) Labels() []string {
	out := make([]string, 0, 3)
	for _, l := range []string{s.Compound, s.Species, s.Tissue} {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

//Personal.AI order the ending
