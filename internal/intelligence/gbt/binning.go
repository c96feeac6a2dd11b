package gbt

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// binMapper discretises each feature into at most maxBins ordinal bins.  A
// value v falls in bin b when thresholds[b-1] < v <= thresholds[b].
type binMapper struct {
	thresholds [][]float64
}

// fitBins learns per-feature bin thresholds.  Features with at most maxBins
// distinct values get one bin per value, split at the midpoints; others are
// cut at evenly spaced quantiles.
func fitBins(x [][]float64, nFeatures, maxBins int) *binMapper {
	m := &binMapper{thresholds: make([][]float64, nFeatures)}
	col := make([]float64, len(x))
	for f := 0; f < nFeatures; f++ {
		for i, row := range x {
			col[i] = row[f]
		}
		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)
		m.thresholds[f] = thresholdsFor(sorted, maxBins)
	}
	return m
}

func thresholdsFor(sorted []float64, maxBins int) []float64 {
	distinct := make([]float64, 0, len(sorted))
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			distinct = append(distinct, v)
		}
	}
	if len(distinct) <= maxBins {
		th := make([]float64, 0, len(distinct))
		for i := 0; i+1 < len(distinct); i++ {
			th = append(th, distinct[i]/2+distinct[i+1]/2)
		}
		return th
	}
	th := make([]float64, 0, maxBins-1)
	for j := 1; j < maxBins; j++ {
		q := stat.Quantile(float64(j)/float64(maxBins), stat.LinInterp, sorted, nil)
		if len(th) == 0 || q > th[len(th)-1] {
			th = append(th, q)
		}
	}
	return th
}

// numBins returns the number of bins of feature f.
func (m *binMapper) numBins(f int) int { return len(m.thresholds[f]) + 1 }

// bin maps a raw value of feature f to its bin.
func (m *binMapper) bin(f int, v float64) uint8 {
	return uint8(sort.SearchFloat64s(m.thresholds[f], v))
}

// threshold returns the raw value separating bin b from bin b+1.
func (m *binMapper) threshold(f, b int) float64 { return m.thresholds[f][b] }

// transform bins a matrix column-major: out[f][i] is the bin of row i.
func (m *binMapper) transform(x [][]float64) [][]uint8 {
	out := make([][]uint8, len(m.thresholds))
	for f := range m.thresholds {
		c := make([]uint8, len(x))
		for i, row := range x {
			c[i] = m.bin(f, row[f])
		}
		out[f] = c
	}
	return out
}

//Personal.AI order the ending
