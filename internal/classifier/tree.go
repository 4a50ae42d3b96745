package classifier

import (
	"math/rand"
	"sort"
)

// Node is one entry of a flattened CART tree. Leaves have Left == -1.
type Node struct {
	Feature   int
	Threshold float64
	Left      int32
	Right     int32
	Value     float64 // fraction of positive samples reaching the node
}

// Tree is a binary classification tree stored as a flat node slice, root at 0
type Tree struct {
	Nodes []Node
}

type treeBuilder struct {
	x               [][]float64
	y               []int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	rnd             *rand.Rand
	nodes           []Node
}

// fitTree grows a tree on the rows selected by idx. idx may contain repeats
// (bootstrap samples).
func fitTree(x [][]float64, y []int, idx []int, cfg Config, maxFeatures int, rnd *rand.Rand) Tree {
	b := &treeBuilder{
		x:               x,
		y:               y,
		maxDepth:        cfg.MaxDepth,
		minSamplesSplit: cfg.MinSamplesSplit,
		minSamplesLeaf:  cfg.MinSamplesLeaf,
		maxFeatures:     maxFeatures,
		rnd:             rnd,
	}
	b.build(idx, 0)
	return Tree{Nodes: b.nodes}
}

func (b *treeBuilder) build(idx []int, depth int) int32 {
	n := len(idx)
	pos := 0
	for _, i := range idx {
		pos += b.y[i]
	}

	id := int32(len(b.nodes))
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1, Value: float64(pos) / float64(n)})

	if n < b.minSamplesSplit || pos == 0 || pos == n {
		return id
	}
	if b.maxDepth > 0 && depth >= b.maxDepth {
		return id
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		return id
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[id].Feature = feature
	b.nodes[id].Threshold = threshold
	b.nodes[id].Left = l
	b.nodes[id].Right = r
	return id
}

// bestSplit visits features in random order and keeps going past
// maxFeatures until at least one valid split has been found.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	nFeatures := len(b.x[idx[0]])
	order := b.rnd.Perm(nFeatures)

	bestScore := 0.0
	bestFeature, bestThreshold := -1, 0.0
	sorted := make([]int, len(idx))

	for visited, f := range order {
		if visited >= b.maxFeatures && bestFeature >= 0 {
			break
		}

		copy(sorted, idx)
		sort.Slice(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		total := len(sorted)
		totalPos := 0
		for _, i := range sorted {
			totalPos += b.y[i]
		}

		leftPos := 0
		for k := 1; k < total; k++ {
			leftPos += b.y[sorted[k-1]]
			prev, cur := b.x[sorted[k-1]][f], b.x[sorted[k]][f]
			if prev == cur {
				continue
			}
			if k < b.minSamplesLeaf || total-k < b.minSamplesLeaf {
				continue
			}

			score := weightedGini(leftPos, k, totalPos-leftPos, total-k)
			if bestFeature < 0 || score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = prev + (cur-prev)/2
				if bestThreshold >= cur {
					bestThreshold = prev
				}
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// weightedGini returns the size-weighted gini impurity of two children,
// scaled by the parent size.
func weightedGini(leftPos, leftN, rightPos, rightN int) float64 {
	return float64(leftN)*gini(leftPos, leftN) + float64(rightN)*gini(rightPos, rightN)
}

func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

// predict returns the positive-class fraction of the leaf x falls into
func (t Tree) predict(x []float64) float64 {
	i := int32(0)
	for {
		node := t.Nodes[i]
		if node.Left < 0 {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}
