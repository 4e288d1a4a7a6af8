package forest

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// node is one split or leaf of a classification tree. Children are indices
// into the tree's node slice so the whole tree is gob-friendly.
type node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Leaf      bool
	Prob      float64 // positive-class fraction at a leaf
}

// tree is a CART classification tree grown on a bootstrap sample.
type tree struct {
	Nodes []node
}

// predictProba walks the tree for one feature row.
func (t *tree) predictProba(row []float64) float64 {
	idx := 0
	for {
		nd := t.Nodes[idx]
		if nd.Leaf {
			return nd.Prob
		}
		if row[nd.Feature] <= nd.Threshold {
			idx = nd.Left
		} else {
			idx = nd.Right
		}
	}
}

// gini computes the Gini impurity of a 0/1 outcome subset.
func gini(pos, total float64) float64 {
	if total == 0 {
		return 0
	}
	p := pos / total
	return 2 * p * (1 - p)
}

// splitCandidate is the best split found for one feature.
type splitCandidate struct {
	feature   int
	threshold float64
	decrease  float64 // impurity decrease, weighted by node share of the sample
	ok        bool
}

// treeGrower grows one tree and accumulates its Gini importance.
type treeGrower struct {
	X          *mat.Dense
	y          *mat.VecDense
	params     Params
	rng        *rand.Rand
	nTotal     float64
	importance []float64
	nodes      []node
}

// grow builds the tree from the given bootstrap row indices.
func (g *treeGrower) grow(rows []int) tree {
	g.build(rows, 0)
	return tree{Nodes: g.nodes}
}

// build appends the subtree for rows and returns its node index.
func (g *treeGrower) build(rows []int, depth int) int {
	var pos float64
	for _, i := range rows {
		pos += g.y.AtVec(i)
	}
	total := float64(len(rows))

	leaf := func() int {
		g.nodes = append(g.nodes, node{Leaf: true, Prob: pos / total})
		return len(g.nodes) - 1
	}

	if pos == 0 || pos == total || len(rows) < 2*g.params.MinLeaf ||
		(g.params.MaxDepth > 0 && depth >= g.params.MaxDepth) {
		return leaf()
	}

	best := g.bestSplit(rows, pos, total)
	if !best.ok {
		return leaf()
	}

	var left, right []int
	for _, i := range rows {
		if g.X.At(i, best.feature) <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < g.params.MinLeaf || len(right) < g.params.MinLeaf {
		return leaf()
	}

	g.importance[best.feature] += best.decrease

	idx := len(g.nodes)
	g.nodes = append(g.nodes, node{Feature: best.feature, Threshold: best.threshold})
	g.nodes[idx].Left = g.build(left, depth+1)
	g.nodes[idx].Right = g.build(right, depth+1)
	return idx
}

// bestSplit searches mtry randomly chosen features for the split with the
// largest impurity decrease.
func (g *treeGrower) bestSplit(rows []int, pos, total float64) splitCandidate {
	_, p := g.X.Dims()
	mtry := g.params.MTry
	if mtry <= 0 || mtry > p {
		mtry = p
	}

	features := g.rng.Perm(p)[:mtry]
	sort.Ints(features)

	parent := gini(pos, total)
	best := splitCandidate{}
	for _, f := range features {
		cand := g.bestThreshold(rows, f, pos, total, parent)
		if cand.ok && (!best.ok || cand.decrease > best.decrease) {
			best = cand
		}
	}
	return best
}

// bestThreshold scans the midpoints of the feature's sorted distinct values.
func (g *treeGrower) bestThreshold(rows []int, feature int, pos, total, parent float64) splitCandidate {
	type fy struct{ x, y float64 }
	vals := make([]fy, len(rows))
	for k, i := range rows {
		vals[k] = fy{g.X.At(i, feature), g.y.AtVec(i)}
	}
	sort.Slice(vals, func(a, b int) bool { return vals[a].x < vals[b].x })

	best := splitCandidate{feature: feature}
	var leftPos, leftN float64
	for k := 0; k < len(vals)-1; k++ {
		leftPos += vals[k].y
		leftN++
		if vals[k].x == vals[k+1].x {
			continue
		}
		rightPos := pos - leftPos
		rightN := total - leftN

		weighted := (leftN*gini(leftPos, leftN) + rightN*gini(rightPos, rightN)) / total
		decrease := (parent - weighted) * total / g.nTotal
		if decrease > 1e-12 && (!best.ok || decrease > best.decrease) {
			best.ok = true
			best.threshold = (vals[k].x + vals[k+1].x) / 2
			best.decrease = decrease
		}
	}
	if best.ok && math.IsNaN(best.decrease) {
		best.ok = false
	}
	return best
}
