package gbt

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// threeBands returns rows whose class is decided by feature 0 alone:
// [0,20) -> 0, [20,40) -> 1, [40,60) -> 2.  Feature 1 is periodic noise.
func threeBands() ([][]float64, []int) {
	x := make([][]float64, 60)
	y := make([]int, 60)
	for i := range x {
		x[i] = []float64{float64(i), float64(i % 7)}
		y[i] = i / 20
	}
	return x, y
}

// twoBands returns a binary problem with labels {0, 2}.
func twoBands() ([][]float64, []int) {
	x := make([][]float64, 40)
	y := make([]int, 40)
	for i := range x {
		x[i] = []float64{float64(i % 5), float64(i) / 4}
		if i >= 20 {
			y[i] = 2
		}
	}
	return x, y
}

func classicParams() Params {
	return Params{
		NEstimators:     25,
		LearningRate:    0.5,
		MaxDepth:        3,
		MinSamplesSplit: 4,
		MinSamplesLeaf:  2,
		Subsample:       0.8,
		Seed:            42,
	}
}

func histParams() HistParams {
	p := DefaultHistParams()
	p.MaxIter = 30
	p.MinSamplesLeaf = 3
	p.MaxDepth = 4
	p.L2Regularization = 0.0004
	p.Seed = 42
	return p
}

func TestFitGradientBoosting_Multiclass(t *testing.T) {
	x, y := threeBands()
	m, err := FitGradientBoosting(context.Background(), x, y, classicParams())
	require.NoError(t, err)

	assert.Equal(t, KindGradientBoosting, m.Kind())
	assert.Equal(t, []int{0, 1, 2}, m.Classes())
	assert.Equal(t, 2, m.NumFeatures())
	assert.Equal(t, 3, m.NumOutputs())
	assert.Equal(t, 25, m.NumIterations())

	for _, tc := range []struct {
		x0   float64
		want int
	}{{5, 0}, {10, 0}, {25, 1}, {30, 1}, {45, 2}, {55, 2}} {
		got, err := m.Predict([]float64{tc.x0, 3})
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "x0=%v", tc.x0)
	}

	p, err := m.PredictProba([]float64{30, 1})
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.InDelta(t, 1.0, p[0]+p[1]+p[2], 1e-9)

	for _, round := range m.trees {
		for _, tree := range round {
			assert.LessOrEqual(t, tree.Depth(), 3)
		}
	}
}

func TestFitGradientBoosting_Deterministic(t *testing.T) {
	x, y := threeBands()
	a, err := FitGradientBoosting(context.Background(), x, y, classicParams())
	require.NoError(t, err)
	b, err := FitGradientBoosting(context.Background(), x, y, classicParams())
	require.NoError(t, err)

	pa, _ := a.PredictProba([]float64{21, 4})
	pb, _ := b.PredictProba([]float64{21, 4})
	assert.Equal(t, pa, pb)
}

func TestFitGradientBoosting_Binary(t *testing.T) {
	x, y := twoBands()
	p := classicParams()
	p.Subsample = 1.0
	m, err := FitGradientBoosting(context.Background(), x, y, p)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, m.Classes())
	assert.Equal(t, 1, m.NumOutputs())

	got, err := m.Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	got, err = m.Predict([]float64{1, 8})
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestFitHistGradientBoosting_Binary(t *testing.T) {
	x, y := twoBands()
	m, err := FitHistGradientBoosting(context.Background(), x, y, histParams())
	require.NoError(t, err)

	assert.Equal(t, KindHistGradientBoosting, m.Kind())
	assert.Equal(t, []int{0, 2}, m.Classes())
	assert.Equal(t, 30, m.NumIterations())

	got, err := m.Predict([]float64{2, 0.5})
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	got, err = m.Predict([]float64{2, 9})
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	p, err := m.PredictProba([]float64{0, 9})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p[0]+p[1], 1e-12)
	assert.Greater(t, p[1], 0.5)
}

func TestFitHistGradientBoosting_MulticlassRespectsLimits(t *testing.T) {
	x, y := threeBands()
	p := histParams()
	p.MaxLeafNodes = 4
	p.MaxDepth = 2
	m, err := FitHistGradientBoosting(context.Background(), x, y, p)
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumOutputs())

	for _, round := range m.trees {
		require.Len(t, round, 3)
		for _, tree := range round {
			assert.LessOrEqual(t, numLeaves(tree), 4)
			assert.LessOrEqual(t, tree.Depth(), 2)
		}
	}

	got, err := m.Predict([]float64{50, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	got, err = m.Predict([]float64{8, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestFit_TrainingFailures(t *testing.T) {
	ctx := context.Background()
	x, _ := threeBands()
	single := make([]int, len(x))

	tests := []struct {
		name string
		x    [][]float64
		y    []int
	}{
		{"single class", x, single},
		{"empty", nil, nil},
		{"label count", x, []int{0, 1}},
		{"ragged", [][]float64{{1, 2}, {3}, {4, 5}, {6, 7}}, []int{0, 1, 0, 1}},
		{"non-finite", [][]float64{{1}, {math.NaN()}, {2}, {3}}, []int{0, 1, 0, 1}},
		{"no features", [][]float64{{}, {}, {}, {}}, []int{0, 1, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitGradientBoosting(ctx, tt.x, tt.y, DefaultParams())
			require.Error(t, err)
			assert.True(t, errors.IsTrainingFailure(err), err.Error())

			_, err = FitHistGradientBoosting(ctx, tt.x, tt.y, histParams())
			require.Error(t, err)
			assert.True(t, errors.IsTrainingFailure(err), err.Error())
		})
	}
}

func TestFit_BelowMinimumRows(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []int{0, 1, 0, 1}

	p := classicParams()
	p.MinSamplesSplit = 17
	_, err := FitGradientBoosting(context.Background(), x, y, p)
	assert.True(t, errors.IsTrainingFailure(err))

	hp := histParams()
	hp.MinSamplesLeaf = 3
	_, err = FitHistGradientBoosting(context.Background(), x, y, hp)
	assert.True(t, errors.IsTrainingFailure(err))
}

func TestFit_InvalidParams(t *testing.T) {
	x, y := threeBands()
	p := classicParams()
	p.Subsample = 1.5
	_, err := FitGradientBoosting(context.Background(), x, y, p)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelConfigInvalid))

	hp := histParams()
	hp.MaxBins = 300
	_, err = FitHistGradientBoosting(context.Background(), x, y, hp)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelConfigInvalid))
}

func TestFit_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x, y := threeBands()
	_, err := FitGradientBoosting(ctx, x, y, classicParams())
	assert.Error(t, err)
	_, err = FitHistGradientBoosting(ctx, x, y, histParams())
	assert.Error(t, err)
}

func TestEnsemble_WidthMismatch(t *testing.T) {
	x, y := twoBands()
	m, err := FitHistGradientBoosting(context.Background(), x, y, histParams())
	require.NoError(t, err)
	_, err = m.Predict([]float64{1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInferenceFailed))
}

//Personal.AI order the ending
