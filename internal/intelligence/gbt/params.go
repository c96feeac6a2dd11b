package gbt

import (
	"fmt"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// Params configures the classic gradient-boosting trainer.
type Params struct {
	NEstimators     int     `json:"n_estimators" mapstructure:"n_estimators"`
	LearningRate    float64 `json:"learning_rate" mapstructure:"learning_rate"`
	MaxDepth        int     `json:"max_depth" mapstructure:"max_depth"`
	MinSamplesSplit int     `json:"min_samples_split" mapstructure:"min_samples_split"`
	MinSamplesLeaf  int     `json:"min_samples_leaf" mapstructure:"min_samples_leaf"`
	// Subsample is the fraction of rows drawn without replacement for each
	// boosting round.  1.0 disables subsampling.
	Subsample float64 `json:"subsample" mapstructure:"subsample"`
	Seed      int64   `json:"seed" mapstructure:"seed"`
}

// DefaultParams mirrors the conventional gradient-boosting defaults.
func DefaultParams() Params {
	return Params{
		NEstimators:     100,
		LearningRate:    0.1,
		MaxDepth:        3,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Subsample:       1.0,
	}
}

// Validate rejects parameter sets the trainer cannot run with.
func (p Params) Validate() error {
	switch {
	case p.NEstimators < 1:
		return invalidParam("n_estimators", p.NEstimators)
	case p.LearningRate <= 0:
		return invalidParam("learning_rate", p.LearningRate)
	case p.MaxDepth < 1:
		return invalidParam("max_depth", p.MaxDepth)
	case p.MinSamplesSplit < 2:
		return invalidParam("min_samples_split", p.MinSamplesSplit)
	case p.MinSamplesLeaf < 1:
		return invalidParam("min_samples_leaf", p.MinSamplesLeaf)
	case p.Subsample <= 0 || p.Subsample > 1:
		return invalidParam("subsample", p.Subsample)
	}
	return nil
}

// HistParams configures the histogram-binned trainer.
type HistParams struct {
	MaxIter          int     `json:"max_iter" mapstructure:"max_iter"`
	LearningRate     float64 `json:"learning_rate" mapstructure:"learning_rate"`
	MaxLeafNodes     int     `json:"max_leaf_nodes" mapstructure:"max_leaf_nodes"`
	MaxDepth         int     `json:"max_depth" mapstructure:"max_depth"`
	MinSamplesLeaf   int     `json:"min_samples_leaf" mapstructure:"min_samples_leaf"`
	L2Regularization float64 `json:"l2_regularization" mapstructure:"l2_regularization"`
	MaxBins          int     `json:"max_bins" mapstructure:"max_bins"`
	// MinHessianToSplit is the smallest hessian sum a child may carry.
	MinHessianToSplit float64 `json:"min_hessian_to_split" mapstructure:"min_hessian_to_split"`
	// Seed is recorded for reproducibility.  Histogram training without
	// early stopping and without binning subsamples draws no random numbers.
	Seed int64 `json:"seed" mapstructure:"seed"`
}

// DefaultHistParams mirrors the conventional histogram-boosting defaults.
func DefaultHistParams() HistParams {
	return HistParams{
		MaxIter:           100,
		LearningRate:      0.1,
		MaxLeafNodes:      31,
		MinSamplesLeaf:    20,
		MaxBins:           255,
		MinHessianToSplit: 1e-3,
	}
}

// Validate rejects parameter sets the trainer cannot run with.  MaxDepth 0
// means unlimited.
func (p HistParams) Validate() error {
	switch {
	case p.MaxIter < 1:
		return invalidParam("max_iter", p.MaxIter)
	case p.LearningRate <= 0:
		return invalidParam("learning_rate", p.LearningRate)
	case p.MaxLeafNodes < 2:
		return invalidParam("max_leaf_nodes", p.MaxLeafNodes)
	case p.MaxDepth < 0:
		return invalidParam("max_depth", p.MaxDepth)
	case p.MinSamplesLeaf < 1:
		return invalidParam("min_samples_leaf", p.MinSamplesLeaf)
	case p.L2Regularization < 0:
		return invalidParam("l2_regularization", p.L2Regularization)
	case p.MaxBins < 2 || p.MaxBins > 255:
		return invalidParam("max_bins", p.MaxBins)
	case p.MinHessianToSplit < 0:
		return invalidParam("min_hessian_to_split", p.MinHessianToSplit)
	}
	return nil
}

func invalidParam(name string, v interface{}) error {
	return errors.New(errors.ErrCodeModelConfigInvalid, fmt.Sprintf("invalid %s: %v", name, v))
}

//Personal.AI order the ending
