// Package ecotox binds the gradient-boosting trainers to the early-warning
// domain: the fixed per-(medium, endpoint) model configuration, training a
// classifier from a reference table, and inference over both endpoints.
package ecotox

import (
	"fmt"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/intelligence/gbt"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// ---------------------------------------------------------------------------
// Model configuration
// ---------------------------------------------------------------------------

// ModelConfig selects the boosting family and hyperparameters for one
// (medium, endpoint) classifier.  Exactly one of Classic and Hist is set,
// matching Kind.
type ModelConfig struct {
	Medium   exposure.Medium   `json:"medium"`
	Endpoint exposure.Endpoint `json:"endpoint"`
	Kind     gbt.Kind          `json:"kind"`
	Classic  *gbt.Params       `json:"classic,omitempty"`
	Hist     *gbt.HistParams   `json:"hist,omitempty"`
}

// Name returns a stable identifier such as "aquatic_MDA_gradient_boosting".
func (c ModelConfig) Name() string {
	return fmt.Sprintf("%s_%s_%s", c.Medium, c.Endpoint, c.Kind)
}

// Validate checks that the configuration is runnable.
func (c ModelConfig) Validate() error {
	if !c.Medium.IsValid() || !c.Endpoint.IsValid() {
		return errors.New(errors.ErrCodeModelConfigInvalid, "model configuration has no valid medium/endpoint").
			WithDetail(fmt.Sprintf("medium=%s endpoint=%s", c.Medium, c.Endpoint))
	}
	switch c.Kind {
	case gbt.KindGradientBoosting:
		if c.Classic == nil {
			return errors.New(errors.ErrCodeModelConfigInvalid, "gradient boosting configuration has no parameters").
				WithDetail(c.Name())
		}
		return c.Classic.Validate()
	case gbt.KindHistGradientBoosting:
		if c.Hist == nil {
			return errors.New(errors.ErrCodeModelConfigInvalid, "histogram gradient boosting configuration has no parameters").
				WithDetail(c.Name())
		}
		return c.Hist.Validate()
	default:
		return errors.New(errors.ErrCodeUnsupportedModelKind, fmt.Sprintf("unsupported model kind %q", c.Kind)).
			WithDetail(fmt.Sprintf("medium=%s endpoint=%s", c.Medium, c.Endpoint))
	}
}

// Seed returns the random seed of whichever parameter set is active.
func (c ModelConfig) Seed() int64 {
	switch {
	case c.Classic != nil:
		return c.Classic.Seed
	case c.Hist != nil:
		return c.Hist.Seed
	}
	return 0
}

const fixedSeed = 42

func histConfig(m exposure.Medium, e exposure.Endpoint, maxIter, minLeaf, maxDepth int, l2 float64) ModelConfig {
	p := gbt.DefaultHistParams()
	p.MaxIter = maxIter
	p.MinSamplesLeaf = minLeaf
	p.MaxDepth = maxDepth
	p.L2Regularization = l2
	p.Seed = fixedSeed
	return ModelConfig{Medium: m, Endpoint: e, Kind: gbt.KindHistGradientBoosting, Hist: &p}
}

func fixedConfigs() []ModelConfig {
	return []ModelConfig{
		{
			Medium:   exposure.MediumAquatic,
			Endpoint: exposure.EndpointMDA,
			Kind:     gbt.KindGradientBoosting,
			Classic: &gbt.Params{
				NEstimators:     423,
				LearningRate:    0.4454251663215166,
				MaxDepth:        9,
				MinSamplesSplit: 17,
				MinSamplesLeaf:  2,
				Subsample:       0.6821495488560924,
				Seed:            fixedSeed,
			},
		},
		histConfig(exposure.MediumSoil, exposure.EndpointMDA, 77, 1, 8, 0.0003912032355487126),
		histConfig(exposure.MediumAquatic, exposure.EndpointROS, 59, 6, 7, 0.0004080785316419737),
		histConfig(exposure.MediumSoil, exposure.EndpointROS, 99, 3, 10, 0.00022185096068270407),
	}
}

// ConfigFor returns the fixed configuration for (medium, endpoint).
func ConfigFor(medium exposure.Medium, endpoint exposure.Endpoint) (ModelConfig, error) {
	for _, c := range fixedConfigs() {
		if c.Medium == medium && c.Endpoint == endpoint {
			return c, nil
		}
	}
	return ModelConfig{}, errors.New(errors.ErrCodeModelConfigInvalid, "no model configuration").
		WithDetail(fmt.Sprintf("medium=%s endpoint=%s", medium, endpoint))
}

//Personal.AI order the ending
