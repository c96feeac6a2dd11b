// Package gbt implements gradient-boosted decision-tree classifiers trained in
// process: a classic exact-split booster with stochastic row subsampling and
// a histogram-binned booster that grows trees leaf-wise.  Both produce an
// Ensemble that satisfies Model.
package gbt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// Model is a fitted multi-class classifier over dense float vectors.
type Model interface {
	// Predict returns the most probable class label for x.
	Predict(x []float64) (int, error)

	// PredictProba returns one probability per entry of Classes.
	PredictProba(x []float64) ([]float64, error)

	// Classes returns the sorted class labels seen during training.
	Classes() []int

	// NumFeatures returns the input width the model was trained on.
	NumFeatures() int
}

// Kind identifies the boosting family that produced an Ensemble.
type Kind string

const (
	KindGradientBoosting     Kind = "gradient_boosting"
	KindHistGradientBoosting Kind = "hist_gradient_boosting"
)

// Ensemble is an additive tree model.  With two classes it carries a single
// logistic output; with more it carries one output per class combined by
// softmax.  Leaf values already include the learning rate.
type Ensemble struct {
	kind      Kind
	classes   []int
	nFeatures int
	baseline  []float64
	trees     [][]*Tree // trees[iteration][output]
}

var _ Model = (*Ensemble)(nil)

// Kind returns the boosting family.
func (e *Ensemble) Kind() Kind { return e.kind }

// Classes implements Model.
func (e *Ensemble) Classes() []int {
	out := make([]int, len(e.classes))
	copy(out, e.classes)
	return out
}

// NumFeatures implements Model.
func (e *Ensemble) NumFeatures() int { return e.nFeatures }

// NumIterations returns the number of boosting rounds.
func (e *Ensemble) NumIterations() int { return len(e.trees) }

// NumOutputs returns 1 for binary models and the class count otherwise.
func (e *Ensemble) NumOutputs() int { return len(e.baseline) }

// Raw returns the additive scores before the link function.
func (e *Ensemble) Raw(x []float64) ([]float64, error) {
	if len(x) != e.nFeatures {
		return nil, errors.New(errors.ErrCodeInferenceFailed,
			fmt.Sprintf("input has %d features, model expects %d", len(x), e.nFeatures))
	}
	raw := make([]float64, len(e.baseline))
	copy(raw, e.baseline)
	for _, round := range e.trees {
		for k, t := range round {
			raw[k] += t.Predict(x)
		}
	}
	return raw, nil
}

// PredictProba implements Model.
func (e *Ensemble) PredictProba(x []float64) ([]float64, error) {
	raw, err := e.Raw(x)
	if err != nil {
		return nil, err
	}
	return probabilities(raw), nil
}

// Predict implements Model.  Ties resolve to the lowest class.
func (e *Ensemble) Predict(x []float64) (int, error) {
	p, err := e.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return e.classes[floats.MaxIdx(p)], nil
}

// probabilities maps raw scores to class probabilities: logistic for a single
// output, softmax otherwise.
func probabilities(raw []float64) []float64 {
	if len(raw) == 1 {
		p := sigmoid(raw[0])
		return []float64{1 - p, p}
	}
	out := make([]float64, len(raw))
	softmaxInto(out, raw)
	return out
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1 + ez)
}

func softmaxInto(dst, raw []float64) {
	lse := floats.LogSumExp(raw)
	for i, r := range raw {
		dst[i] = math.Exp(r - lse)
	}
}

//Personal.AI order the ending
