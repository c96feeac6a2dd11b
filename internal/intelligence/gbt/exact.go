package gbt

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// FitGradientBoosting trains a classic gradient-boosting classifier.  Each
// round draws a subsample of rows without replacement, fits one regression
// tree per output on the negative gradient of the log loss using exact
// splits scored by the Friedman mean-squared-error criterion, and replaces
// every leaf value with a single Newton step.
//
// ctx is only checked before training starts; a started fit runs to the end.
func FitGradientBoosting(ctx context.Context, x [][]float64, y []int, p Params) (*Ensemble, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "training not started")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	minRows := p.MinSamplesSplit
	if 2*p.MinSamplesLeaf > minRows {
		minRows = 2 * p.MinSamplesLeaf
	}
	ds, err := newDataset(x, y, minRows)
	if err != nil {
		return nil, err
	}

	n := ds.n()
	loss := logLoss{nClasses: len(ds.classes)}
	nOut := loss.nOutputs()
	base := loss.baseline(ds.yIdx)
	raw := make([][]float64, n)
	for i := range raw {
		raw[i] = append([]float64(nil), base...)
	}

	b := newExactBuilder(ds.x, ds.nFeatures, p)
	rng := rand.New(rand.NewSource(p.Seed))
	nInBag := int(p.Subsample * float64(n))
	if nInBag < 1 {
		nInBag = 1
	}

	ens := &Ensemble{
		kind:      KindGradientBoosting,
		classes:   ds.classes,
		nFeatures: ds.nFeatures,
		baseline:  base,
		trees:     make([][]*Tree, 0, p.NEstimators),
	}

	inBag := make([]bool, n)
	resid := make([]float64, n)
	prob := make([][]float64, nOut)
	for k := range prob {
		prob[k] = make([]float64, n)
	}

	for it := 0; it < p.NEstimators; it++ {
		drawInBag(rng, inBag, nInBag)
		for k := 0; k < nOut; k++ {
			loss.probaInto(prob[k], raw, k)
		}

		round := make([]*Tree, nOut)
		for k := 0; k < nOut; k++ {
			for i := 0; i < n; i++ {
				resid[i] = loss.target(ds.yIdx[i], k) - prob[k][i]
			}
			tree, leafOf := b.build(inBag, resid)
			newtonLeaves(tree, leafOf, resid, prob[k], nOut, loss.nClasses, p.LearningRate)
			for i := 0; i < n; i++ {
				raw[i][k] += tree.Predict(ds.x[i])
			}
			round[k] = tree
		}
		ens.trees = append(ens.trees, round)
	}
	return ens, nil
}

// drawInBag marks nInBag rows, chosen without replacement, as in-bag.
func drawInBag(rng *rand.Rand, inBag []bool, nInBag int) {
	n := len(inBag)
	if nInBag >= n {
		for i := range inBag {
			inBag[i] = true
		}
		return
	}
	for i := range inBag {
		inBag[i] = false
	}
	for _, i := range rng.Perm(n)[:nInBag] {
		inBag[i] = true
	}
}

// newtonLeaves replaces each leaf's mean residual with a Newton step computed
// from the in-bag rows that reached it, scaled by the learning rate.
func newtonLeaves(t *Tree, leafOf []int, resid, prob []float64, nOut, nClasses int, lr float64) {
	num := make(map[int]float64)
	den := make(map[int]float64)
	for i, leaf := range leafOf {
		if leaf < 0 {
			continue
		}
		r := resid[i]
		num[leaf] += r
		if nOut == 1 {
			den[leaf] += prob[i] * (1 - prob[i])
		} else {
			a := math.Abs(r)
			den[leaf] += a * (1 - a)
		}
	}
	scale := 1.0
	if nOut > 1 {
		scale = float64(nClasses-1) / float64(nClasses)
	}
	for i := range t.nodes {
		if !t.nodes[i].Leaf {
			continue
		}
		d := den[i]
		v := 0.0
		if math.Abs(d) >= 1e-150 {
			v = scale * num[i] / d
		}
		t.setLeafValue(i, lr*v)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Exact-split tree builder
// ─────────────────────────────────────────────────────────────────────────────

type exactBuilder struct {
	x         [][]float64
	nFeatures int
	order     [][]int // order[f] lists every row sorted by feature f
	maxDepth  int
	minSplit  int
	minLeaf   int
	goLeft    []bool
}

func newExactBuilder(x [][]float64, nFeatures int, p Params) *exactBuilder {
	order := make([][]int, nFeatures)
	for f := 0; f < nFeatures; f++ {
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]][f] < x[idx[b]][f] })
		order[f] = idx
	}
	minSplit := p.MinSamplesSplit
	if 2*p.MinSamplesLeaf > minSplit {
		minSplit = 2 * p.MinSamplesLeaf
	}
	return &exactBuilder{
		x:         x,
		nFeatures: nFeatures,
		order:     order,
		maxDepth:  p.MaxDepth,
		minSplit:  minSplit,
		minLeaf:   p.MinSamplesLeaf,
		goLeft:    make([]bool, len(x)),
	}
}

// build fits a regression tree to r over the in-bag rows.  leafOf maps each
// in-bag row to its leaf node and each out-of-bag row to -1.
func (b *exactBuilder) build(inBag []bool, r []float64) (*Tree, []int) {
	lists := make([][]int, b.nFeatures)
	for f, ord := range b.order {
		l := make([]int, 0, len(ord))
		for _, i := range ord {
			if inBag[i] {
				l = append(l, i)
			}
		}
		lists[f] = l
	}
	leafOf := make([]int, len(inBag))
	for i := range leafOf {
		leafOf[i] = -1
	}
	t := &Tree{}
	root := t.addLeaf(0)
	b.grow(t, root, lists, 0, r, leafOf)
	return t, leafOf
}

type exactSplit struct {
	ok          bool
	feature     int
	threshold   float64
	improvement float64
}

func (b *exactBuilder) grow(t *Tree, id int, lists [][]int, depth int, r []float64, leafOf []int) {
	samples := lists[0]
	n := len(samples)
	var sum, sumSq float64
	for _, s := range samples {
		sum += r[s]
		sumSq += r[s] * r[s]
	}
	mean := sum / float64(n)
	t.setLeafValue(id, mean)

	impurity := sumSq/float64(n) - mean*mean
	if depth >= b.maxDepth || n < b.minSplit || impurity <= 1e-12 {
		b.markLeaf(id, samples, leafOf)
		return
	}
	best := b.bestSplit(lists, r, sum)
	if !best.ok {
		b.markLeaf(id, samples, leafOf)
		return
	}

	left, right := t.split(id, best.feature, best.threshold)
	for _, s := range samples {
		b.goLeft[s] = b.x[s][best.feature] <= best.threshold
	}
	leftLists := make([][]int, b.nFeatures)
	rightLists := make([][]int, b.nFeatures)
	for f, l := range lists {
		ll := make([]int, 0, len(l))
		rl := make([]int, 0, len(l))
		for _, s := range l {
			if b.goLeft[s] {
				ll = append(ll, s)
			} else {
				rl = append(rl, s)
			}
		}
		leftLists[f], rightLists[f] = ll, rl
	}
	b.grow(t, left, leftLists, depth+1, r, leafOf)
	b.grow(t, right, rightLists, depth+1, r, leafOf)
}

func (b *exactBuilder) markLeaf(id int, samples []int, leafOf []int) {
	for _, s := range samples {
		leafOf[s] = id
	}
}

// bestSplit scans every feature for the split with the largest Friedman
// improvement n_l*n_r/n * (mean_l - mean_r)^2 that keeps both children at
// least minLeaf rows.
func (b *exactBuilder) bestSplit(lists [][]int, r []float64, total float64) exactSplit {
	best := exactSplit{improvement: -1}
	for f, l := range lists {
		n := len(l)
		var leftSum float64
		for i := 0; i < n-1; i++ {
			leftSum += r[l[i]]
			nl := i + 1
			nr := n - nl
			if nl < b.minLeaf {
				continue
			}
			if nr < b.minLeaf {
				break
			}
			v, next := b.x[l[i]][f], b.x[l[i+1]][f]
			if next <= v {
				continue
			}
			diff := leftSum/float64(nl) - (total-leftSum)/float64(nr)
			imp := float64(nl) * float64(nr) / float64(n) * diff * diff
			if imp > best.improvement {
				th := v/2 + next/2
				if th == next || math.IsInf(th, 0) {
					th = v
				}
				best = exactSplit{ok: true, feature: f, threshold: th, improvement: imp}
			}
		}
	}
	return best
}

//Personal.AI order the ending
