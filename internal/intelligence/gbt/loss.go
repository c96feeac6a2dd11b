package gbt

import "math"

// logLoss is the binomial or multinomial deviance.  A binary problem uses one
// raw output, a K-class problem uses K outputs.
type logLoss struct {
	nClasses int
}

func (l logLoss) nOutputs() int {
	if l.nClasses == 2 {
		return 1
	}
	return l.nClasses
}

// baseline returns the constant raw prediction that matches the class priors.
func (l logLoss) baseline(yIdx []int) []float64 {
	counts := make([]float64, l.nClasses)
	for _, c := range yIdx {
		counts[c]++
	}
	n := float64(len(yIdx))
	const eps = 1e-15
	if l.nClasses == 2 {
		p := clamp(counts[1]/n, eps, 1-eps)
		return []float64{math.Log(p / (1 - p))}
	}
	out := make([]float64, l.nClasses)
	for k, c := range counts {
		out[k] = math.Log(clamp(c/n, eps, 1))
	}
	return out
}

// probaInto writes the probability of output k for every row given raw
// scores raw[i][*].  For the binary case k is always 0 and the value is the
// positive-class probability.
func (l logLoss) probaInto(dst []float64, raw [][]float64, k int) {
	if l.nClasses == 2 {
		for i, r := range raw {
			dst[i] = sigmoid(r[0])
		}
		return
	}
	buf := make([]float64, l.nClasses)
	for i, r := range raw {
		softmaxInto(buf, r)
		dst[i] = buf[k]
	}
}

// target returns the indicator of output k for a class index.
func (l logLoss) target(class, k int) float64 {
	if l.nClasses == 2 {
		if class == 1 {
			return 1
		}
		return 0
	}
	if class == k {
		return 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

//Personal.AI order the ending
