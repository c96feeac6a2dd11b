// Package exposure holds the exposure-scenario vocabulary of the early-warning
// engine: the two environmental media, the two biomarker endpoints, the
// per-medium category vocabularies, the feature encoder and the fixed risk
// rule that combines both endpoint predictions.
package exposure

import (
	"fmt"
	"strings"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Medium
// ─────────────────────────────────────────────────────────────────────────────

// Medium is the environmental compartment a scenario belongs to.  It selects
// the vocabulary, the reference tables and the model configuration.
type Medium string

const (
	MediumAquatic Medium = "aquatic"
	MediumSoil    Medium = "soil"
)

// AllMedia returns every supported medium in display order.
func AllMedia() []Medium {
	return []Medium{MediumAquatic, MediumSoil}
}

// IsValid reports whether m is a supported medium.
func (m Medium) IsValid() bool {
	return m == MediumAquatic || m == MediumSoil
}

func (m Medium) String() string { return string(m) }

// ParseMedium converts a case-insensitive name into a Medium.
func ParseMedium(s string) (Medium, error) {
	m := Medium(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", errors.Validation("medium", fmt.Sprintf("unsupported medium %q, want aquatic or soil", s))
	}
	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Endpoint
// ─────────────────────────────────────────────────────────────────────────────

// Endpoint is a biomarker readout with its own classifier and class domain.
type Endpoint string

const (
	// EndpointMDA is malondialdehyde, a lipid peroxidation marker.
	EndpointMDA Endpoint = "MDA"
	// EndpointROS is reactive oxygen species.
	EndpointROS Endpoint = "ROS"
)

// AllEndpoints returns both endpoints, MDA first.
func AllEndpoints() []Endpoint {
	return []Endpoint{EndpointMDA, EndpointROS}
}

// IsValid reports whether e is a supported endpoint.
func (e Endpoint) IsValid() bool {
	return e == EndpointMDA || e == EndpointROS
}

func (e Endpoint) String() string { return string(e) }

// ─────────────────────────────────────────────────────────────────────────────
// Endpoint classes
// ─────────────────────────────────────────────────────────────────────────────

// Endpoint class codes shared by MDA and ROS.  ROS never legitimately emits
// ClassInhibition.
const (
	ClassNoResponse  = 0
	ClassInhibition  = 1
	ClassStimulation = 2
)

// Classes returns the class domain of the endpoint.
func (e Endpoint) Classes() []int {
	switch e {
	case EndpointMDA:
		return []int{ClassNoResponse, ClassInhibition, ClassStimulation}
	case EndpointROS:
		return []int{ClassNoResponse, ClassStimulation}
	default:
		return nil
	}
}

// InDomain reports whether class belongs to the endpoint's class domain.
func (e Endpoint) InDomain(class int) bool {
	for _, c := range e.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// ClassLabel renders a class code for display.
func ClassLabel(class int) string {
	switch class {
	case ClassNoResponse:
		return "No Response"
	case ClassInhibition:
		return "Inhibition"
	case ClassStimulation:
		return "Stimulation"
	default:
		return "Unknown"
	}
}

// Legend is the per-endpoint class key shown next to a prediction.
func (e Endpoint) Legend() string {
	parts := make([]string, 0, 3)
	for _, c := range e.Classes() {
		parts = append(parts, fmt.Sprintf("%d: %s", c, ClassLabel(c)))
	}
	return strings.Join(parts, ", ")
}

//Personal.AI order the ending
