package classifier

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const (
	ClassNormal   = 0
	ClassCritical = 1
)

// ClassNames are the report labels indexed by class.
var ClassNames = [2]string{"Normal", "Critical"}

// Model is the capability the assessment engine needs from a trained classifier.
type Model interface {
	Predict(x []float64) int
	PredictProba(x []float64) [2]float64
}

// Node is one split or leaf of a decision tree. Leaves have Left == -1.
type Node struct {
	Feature   int        `json:"f"`
	Threshold float64    `json:"t"`
	Left      int        `json:"l"`
	Right     int        `json:"r"`
	Proba     [2]float64 `json:"p"`
}

// Tree is a CART tree stored as a flat node slice rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) leaf(x []float64) *Node {
	n := &t.Nodes[0]
	for n.Left >= 0 {
		if x[n.Feature] <= n.Threshold {
			n = &t.Nodes[n.Left]
		} else {
			n = &t.Nodes[n.Right]
		}
	}
	return n
}

// Forest is a bagged ensemble of decision trees. It is read-only after
// training or loading and safe for concurrent use.
type Forest struct {
	NumFeatures  int      `json:"num_features"`
	FeatureNames []string `json:"feature_names"`
	Trees        []Tree   `json:"trees"`
}

var _ Model = (*Forest)(nil)

func (f *Forest) checkArity(x []float64) {
	if len(x) != f.NumFeatures {
		panic(fmt.Sprintf("classifier: expected %d features, got %d", f.NumFeatures, len(x)))
	}
}

// PredictProba averages the leaf class distributions of every tree.
// It panics if x does not have NumFeatures elements.
func (f *Forest) PredictProba(x []float64) [2]float64 {
	f.checkArity(x)
	var out [2]float64
	if len(f.Trees) == 0 {
		return out
	}
	for i := range f.Trees {
		p := f.Trees[i].leaf(x).Proba
		out[0] += p[0]
		out[1] += p[1]
	}
	n := float64(len(f.Trees))
	out[0] /= n
	out[1] /= n
	return out
}

// Predict returns the class with the highest averaged probability; ties go to ClassNormal.
func (f *Forest) Predict(x []float64) int {
	p := f.PredictProba(x)
	if p[ClassCritical] > p[ClassNormal] {
		return ClassCritical
	}
	return ClassNormal
}

// ForestParams controls tree growth.
type ForestParams struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
}

// FitForest grows a random forest on X (rows of equal length) and binary labels y.
func FitForest(X [][]float64, y []int, params ForestParams) (*Forest, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("classifier: no training samples")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("classifier: %d samples but %d labels", len(X), len(y))
	}
	d := len(X[0])
	for i, row := range X {
		if len(row) != d {
			return nil, fmt.Errorf("classifier: sample %d has %d features, want %d", i, len(row), d)
		}
	}
	for i, label := range y {
		if label != ClassNormal && label != ClassCritical {
			return nil, fmt.Errorf("classifier: label %d at sample %d is not binary", label, i)
		}
	}
	if params.Trees <= 0 {
		params.Trees = 100
	}
	if params.MinSamplesSplit < 2 {
		params.MinSamplesSplit = 2
	}

	maxFeatures := int(math.Sqrt(float64(d)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	seeds := rand.New(rand.NewSource(params.Seed))
	forest := &Forest{NumFeatures: d, Trees: make([]Tree, params.Trees)}
	for t := range forest.Trees {
		g := &grower{
			X:           X,
			y:           y,
			rng:         rand.New(rand.NewSource(seeds.Int63())),
			maxDepth:    params.MaxDepth,
			minSplit:    params.MinSamplesSplit,
			maxFeatures: maxFeatures,
		}
		sample := make([]int, len(X))
		for i := range sample {
			sample[i] = g.rng.Intn(len(X))
		}
		g.grow(sample, 0)
		forest.Trees[t] = Tree{Nodes: g.nodes}
	}
	return forest, nil
}

type grower struct {
	X           [][]float64
	y           []int
	rng         *rand.Rand
	maxDepth    int
	minSplit    int
	maxFeatures int
	nodes       []Node
}

func gini(counts [2]int) float64 {
	total := counts[0] + counts[1]
	if total == 0 {
		return 0
	}
	p0 := float64(counts[0]) / float64(total)
	p1 := float64(counts[1]) / float64(total)
	return 1 - p0*p0 - p1*p1
}

func (g *grower) counts(idx []int) [2]int {
	var c [2]int
	for _, i := range idx {
		c[g.y[i]]++
	}
	return c
}

// grow appends the subtree for idx and returns the index of its root.
func (g *grower) grow(idx []int, depth int) int {
	counts := g.counts(idx)
	self := len(g.nodes)
	total := float64(len(idx))
	g.nodes = append(g.nodes, Node{
		Left:  -1,
		Right: -1,
		Proba: [2]float64{float64(counts[0]) / total, float64(counts[1]) / total},
	})

	if counts[0] == 0 || counts[1] == 0 || len(idx) < g.minSplit ||
		(g.maxDepth > 0 && depth >= g.maxDepth) {
		return self
	}

	feature, threshold, ok := g.bestSplit(idx, gini(counts))
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if g.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		return self
	}

	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	g.nodes[self].Feature = feature
	g.nodes[self].Threshold = threshold
	g.nodes[self].Left = l
	g.nodes[self].Right = r
	return self
}

// bestSplit tries a random subset of features first and keeps drawing from the
// rest until a split that lowers impurity is found.
func (g *grower) bestSplit(idx []int, parent float64) (int, float64, bool) {
	d := len(g.X[0])
	order := g.rng.Perm(d)

	bestFeature, bestThreshold := -1, 0.0
	bestImpurity := parent
	for visited, f := range order {
		if visited >= g.maxFeatures && bestFeature >= 0 {
			break
		}
		if t, imp, ok := g.splitOn(idx, f); ok && imp < bestImpurity-1e-12 {
			bestFeature, bestThreshold, bestImpurity = f, t, imp
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func (g *grower) splitOn(idx []int, f int) (float64, float64, bool) {
	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.Slice(sorted, func(a, b int) bool { return g.X[sorted[a]][f] < g.X[sorted[b]][f] })

	total := g.counts(sorted)
	var left [2]int
	n := float64(len(sorted))
	bestImp, bestT, found := math.Inf(1), 0.0, false
	for i := 0; i < len(sorted)-1; i++ {
		left[g.y[sorted[i]]]++
		cur, next := g.X[sorted[i]][f], g.X[sorted[i+1]][f]
		if cur == next {
			continue
		}
		right := [2]int{total[0] - left[0], total[1] - left[1]}
		nl := float64(i + 1)
		imp := nl/n*gini(left) + (n-nl)/n*gini(right)
		if imp < bestImp {
			t := cur + (next-cur)/2
			if t >= next {
				t = cur
			}
			bestImp, bestT, found = imp, t, true
		}
	}
	return bestT, bestImp, found
}
