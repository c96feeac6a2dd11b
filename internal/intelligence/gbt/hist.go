package gbt

import (
	"container/heap"
	"context"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// FitHistGradientBoosting trains a histogram-binned gradient-boosting
// classifier.  Features are binned once; every round then grows one tree per
// output leaf-wise, always splitting the leaf with the largest gain, until
// MaxLeafNodes is reached or no leaf can be split.  Leaves hold the
// regularised Newton step -lr*G/(H+l2).  No validation split is held out and
// no early stopping is applied.
//
// ctx is only checked before training starts.
func FitHistGradientBoosting(ctx context.Context, x [][]float64, y []int, p HistParams) (*Ensemble, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "training not started")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ds, err := newDataset(x, y, 2*p.MinSamplesLeaf)
	if err != nil {
		return nil, err
	}

	n := ds.n()
	bins := fitBins(ds.x, ds.nFeatures, p.MaxBins)
	binned := bins.transform(ds.x)

	loss := logLoss{nClasses: len(ds.classes)}
	nOut := loss.nOutputs()
	base := loss.baseline(ds.yIdx)
	raw := make([][]float64, n)
	for i := range raw {
		raw[i] = append([]float64(nil), base...)
	}

	g := &histGrower{bins: bins, binned: binned, p: p, nFeatures: ds.nFeatures}
	ens := &Ensemble{
		kind:      KindHistGradientBoosting,
		classes:   ds.classes,
		nFeatures: ds.nFeatures,
		baseline:  base,
		trees:     make([][]*Tree, 0, p.MaxIter),
	}

	prob := make([][]float64, nOut)
	for k := range prob {
		prob[k] = make([]float64, n)
	}
	grad := make([]float64, n)
	hess := make([]float64, n)

	for it := 0; it < p.MaxIter; it++ {
		for k := 0; k < nOut; k++ {
			loss.probaInto(prob[k], raw, k)
		}
		round := make([]*Tree, nOut)
		for k := 0; k < nOut; k++ {
			for i := 0; i < n; i++ {
				pk := prob[k][i]
				grad[i] = pk - loss.target(ds.yIdx[i], k)
				hess[i] = pk * (1 - pk)
			}
			tree, leafOf := g.grow(grad, hess)
			for i := 0; i < n; i++ {
				raw[i][k] += tree.nodes[leafOf[i]].Value
			}
			round[k] = tree
		}
		ens.trees = append(ens.trees, round)
	}
	return ens, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Leaf-wise histogram grower
// ─────────────────────────────────────────────────────────────────────────────

type histGrower struct {
	bins      *binMapper
	binned    [][]uint8
	p         HistParams
	nFeatures int
}

type histSplit struct {
	ok      bool
	feature int
	bin     int
	gain    float64
}

type histLeaf struct {
	id      int
	depth   int
	samples []int
	sumG    float64
	sumH    float64
	split   histSplit
}

// grow fits one tree to the gradients and returns it along with the leaf
// index reached by every training row.
func (g *histGrower) grow(grad, hess []float64) (*Tree, []int) {
	n := len(grad)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	t := &Tree{}
	leafOf := make([]int, n)
	root := g.newLeaf(t.addLeaf(0), 0, all, grad, hess)

	open := &leafHeap{}
	nLeaves := 1
	if root.split.ok {
		heap.Push(open, root)
	} else {
		g.finalize(t, root, leafOf)
	}

	for open.Len() > 0 && nLeaves < g.p.MaxLeafNodes {
		leaf := heap.Pop(open).(*histLeaf)
		f, b := leaf.split.feature, leaf.split.bin
		leftID, rightID := t.split(leaf.id, f, g.bins.threshold(f, b))

		col := g.binned[f]
		var ls, rs []int
		for _, s := range leaf.samples {
			if int(col[s]) <= b {
				ls = append(ls, s)
			} else {
				rs = append(rs, s)
			}
		}
		nLeaves++
		for _, child := range []*histLeaf{
			g.newLeaf(leftID, leaf.depth+1, ls, grad, hess),
			g.newLeaf(rightID, leaf.depth+1, rs, grad, hess),
		} {
			if child.split.ok {
				heap.Push(open, child)
			} else {
				g.finalize(t, child, leafOf)
			}
		}
	}
	for open.Len() > 0 {
		g.finalize(t, heap.Pop(open).(*histLeaf), leafOf)
	}
	return t, leafOf
}

func (g *histGrower) newLeaf(id, depth int, samples []int, grad, hess []float64) *histLeaf {
	l := &histLeaf{id: id, depth: depth, samples: samples}
	for _, s := range samples {
		l.sumG += grad[s]
		l.sumH += hess[s]
	}
	if g.splittable(l) {
		l.split = g.bestSplit(l, grad, hess)
	}
	return l
}

func (g *histGrower) splittable(l *histLeaf) bool {
	if g.p.MaxDepth > 0 && l.depth >= g.p.MaxDepth {
		return false
	}
	if len(l.samples) < 2*g.p.MinSamplesLeaf {
		return false
	}
	return l.sumH >= g.p.MinHessianToSplit
}

func (g *histGrower) finalize(t *Tree, l *histLeaf, leafOf []int) {
	t.setLeafValue(l.id, -g.p.LearningRate*l.sumG/(l.sumH+g.p.L2Regularization+1e-15))
	for _, s := range l.samples {
		leafOf[s] = l.id
	}
}

// bestSplit builds gradient/hessian histograms for every feature and returns
// the bin boundary with the largest positive gain
// G_L^2/(H_L+l2) + G_R^2/(H_R+l2) - G^2/(H+l2).
func (g *histGrower) bestSplit(l *histLeaf, grad, hess []float64) histSplit {
	lambda := g.p.L2Regularization
	parent := l.sumG * l.sumG / (l.sumH + lambda)
	total := len(l.samples)
	best := histSplit{}

	for f := 0; f < g.nFeatures; f++ {
		nb := g.bins.numBins(f)
		if nb < 2 {
			continue
		}
		hg := make([]float64, nb)
		hh := make([]float64, nb)
		hc := make([]int, nb)
		col := g.binned[f]
		for _, s := range l.samples {
			b := col[s]
			hg[b] += grad[s]
			hh[b] += hess[s]
			hc[b]++
		}

		var gl, hl float64
		cl := 0
		for b := 0; b < nb-1; b++ {
			gl += hg[b]
			hl += hh[b]
			cl += hc[b]
			cr := total - cl
			if cl < g.p.MinSamplesLeaf {
				continue
			}
			if cr < g.p.MinSamplesLeaf {
				break
			}
			gr, hr := l.sumG-gl, l.sumH-hl
			if hl < g.p.MinHessianToSplit || hr < g.p.MinHessianToSplit {
				continue
			}
			gain := gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - parent
			if gain > 0 && gain > best.gain {
				best = histSplit{ok: true, feature: f, bin: b, gain: gain}
			}
		}
	}
	return best
}

// leafHeap orders open leaves by descending gain, then by node id so equal
// gains split in creation order.
type leafHeap []*histLeaf

func (h leafHeap) Len() int { return len(h) }
func (h leafHeap) Less(i, j int) bool {
	if h[i].split.gain != h[j].split.gain {
		return h[i].split.gain > h[j].split.gain
	}
	return h[i].id < h[j].id
}
func (h leafHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *leafHeap) Push(x interface{}) { *h = append(*h, x.(*histLeaf)) }
func (h *leafHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

//Personal.AI order the ending
