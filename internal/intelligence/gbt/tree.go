package gbt

// node is one vertex of a binary regression tree.  Samples with
// x[Feature] <= Threshold go Left.
type node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// Tree is a regression tree stored as a flat node slice rooted at index 0.
type Tree struct {
	nodes []node
}

// Predict returns the leaf value reached by x.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := &t.nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.Leaf {
			return 0
		}
		l, r := walk(n.Left), walk(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return walk(0)
}

func (t *Tree) addLeaf(value float64) int {
	t.nodes = append(t.nodes, node{Leaf: true, Value: value})
	return len(t.nodes) - 1
}

// split turns leaf i into an internal node and appends two fresh leaves.
func (t *Tree) split(i, feature int, threshold float64) (left, right int) {
	left = t.addLeaf(0)
	right = t.addLeaf(0)
	t.nodes[i] = node{Feature: feature, Threshold: threshold, Left: left, Right: right}
	return left, right
}

func (t *Tree) setLeafValue(i int, v float64) {
	t.nodes[i].Value = v
}

//Personal.AI order the ending
