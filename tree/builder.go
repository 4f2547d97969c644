package tree

import (
	"math"
	"math/rand/v2"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/pkg/errors"
)

// Config controls a single tree build.
type Config struct {
	// TargetIndex is the feature to predict. Its type decides the task.
	TargetIndex int

	// MinLeafInstances rejects splits whose children would fall below this
	// count. Must be at least 1.
	MinLeafInstances int

	// MaxDepth caps recursion depth; 0 means unlimited. Callers are
	// responsible for keeping it within a safe recursion bound.
	MaxDepth int

	// FeaturesPerNode, when positive, subsamples that many distinct
	// features (excluding the target) per node. Requires RNG.
	FeaturesPerNode int

	// SplitStrategy selects continuous candidate generation; see the
	// SplitStrategy constants.
	SplitStrategy SplitStrategy

	// MaxContinuousSplits thins StrategyMidpoints candidates per feature
	// when positive. Requires RNG. Ignored by StrategyMeanSD.
	MaxContinuousSplits int

	// KeepLeafInstances retains each leaf's member instances on the node,
	// so boosting can refine leaf values afterward.
	KeepLeafInstances bool

	// RNG is the build's random stream. Only consumed by feature
	// subsampling and candidate thinning, in a fixed per-node order, so a
	// given (dataset, config, seed) is fully deterministic.
	RNG *rand.Rand
}

func (cfg *Config) validate(def dataset.Definition, ds dataset.Dataset) error {
	if len(def) == 0 {
		return errors.NewValidationError("definition", "empty instance definition", 0)
	}
	if len(ds) == 0 {
		return errors.NewValidationError("dataset", "empty instance data set", 0)
	}
	if cfg.TargetIndex < 0 || cfg.TargetIndex >= len(def) {
		return errors.NewValidationError("target_index", "out of range of the instance definition", cfg.TargetIndex)
	}
	if cfg.MinLeafInstances == 0 {
		return errors.NewValidationError("min_leaf_instances", "must be greater than 0", cfg.MinLeafInstances)
	}
	if (cfg.FeaturesPerNode > 0 || cfg.MaxContinuousSplits > 0) && cfg.RNG == nil {
		return errors.NewValidationError("rng", "required for randomized feature or split selection", nil)
	}
	return nil
}

type builder struct {
	def  dataset.Definition
	cfg  Config
	tree *Tree

	// vocabSize is the predicted feature's vocabulary size; 0 for
	// regression.
	vocabSize int
}

// Build grows a decision tree over ds. The tree's task follows the type of
// the predicted feature: discrete targets yield classification trees,
// continuous targets regression trees.
func Build(def dataset.Definition, ds dataset.Dataset, cfg Config) (*Tree, error) {
	if err := cfg.validate(def, ds); err != nil {
		return nil, err
	}

	task := Regression
	vocabSize := 0
	if def[cfg.TargetIndex].Type == dataset.Discrete {
		task = Classification
		vocabSize = len(def[cfg.TargetIndex].Categories)
	}

	t := &Tree{
		TargetIndex: cfg.TargetIndex,
		Task:        task,
		Importance:  make([]FeatureImportance, len(def)),
	}

	b := &builder{def: def, cfg: cfg, tree: t, vocabSize: vocabSize}
	b.buildNode(ds, 0, b.scoreRegion(ds))

	return t, nil
}

// buildNode appends one node for region and returns its arena id. score is
// the region's own impurity/dispersion, carried down from the parent's
// candidate scan to avoid recomputation.
func (b *builder) buildNode(region dataset.Dataset, depth int, score float64) int {
	id := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{Left: -1, Right: -1})
	b.tree.NodeCount++

	if b.cfg.MaxDepth > 0 && depth == b.cfg.MaxDepth {
		b.makeLeaf(id, region)
		return id
	}

	best, ok := b.findBestSplit(region, score)
	if !ok {
		b.makeLeaf(id, region)
		return id
	}

	left, right := partition(region, best)
	if len(left) < b.cfg.MinLeafInstances || len(right) < b.cfg.MinLeafInstances {
		b.makeLeaf(id, region)
		return id
	}

	// The split is committed: credit its score improvement to the feature.
	imp := &b.tree.Importance[best.featureIndex]
	imp.SumScoreDelta += score - b.combinedScore(best.leftScore, best.rightScore, len(left), len(right), len(region))
	imp.Count++

	node := &b.tree.Nodes[id]
	node.Type = Split
	node.FeatureIndex = best.featureIndex
	node.FeatureType = best.featureType
	node.Value = best.value
	node.LeftOp = best.leftOp
	node.RightOp = best.rightOp

	leftID := b.buildNode(left, depth+1, best.leftScore)
	rightID := b.buildNode(right, depth+1, best.rightScore)
	b.tree.Nodes[id].Left = leftID
	b.tree.Nodes[id].Right = rightID

	if b.pruneTwinLeaves(id) {
		b.makeLeaf(id, region)
	}

	return id
}

// findBestSplit scores every candidate over the (possibly subsampled)
// features and returns the one with minimal combined child score. Features
// are scanned in definition order and candidates in generation order, and
// only a strictly lower score displaces the incumbent, so the first minimum
// wins ties.
func (b *builder) findBestSplit(region dataset.Dataset, score float64) (*candidate, bool) {
	candidates := b.generateCandidates(region)
	if len(candidates) == 0 {
		return nil, false
	}

	bestScore := math.MaxFloat64
	bestIndex := -1

	for i := range candidates {
		cand := &candidates[i]
		left, right := partition(region, cand)

		cand.leftScore = b.scoreRegion(left)
		cand.rightScore = b.scoreRegion(right)

		combined := b.combinedScore(cand.leftScore, cand.rightScore, len(left), len(right), len(region))
		if combined < bestScore {
			bestScore = combined
			bestIndex = i
		}
	}

	if bestIndex < 0 {
		return nil, false
	}
	return &candidates[bestIndex], true
}

// makeLeaf configures node id as a leaf predicting the region's mode
// (classification) or mean (regression).
func (b *builder) makeLeaf(id int, region dataset.Dataset) {
	b.tree.LeafCount++

	node := &b.tree.Nodes[id]
	node.Type = Leaf
	node.FeatureIndex = b.cfg.TargetIndex
	node.FeatureType = b.def[b.cfg.TargetIndex].Type
	node.Left = -1
	node.Right = -1
	node.LeftOp = OpNone
	node.RightOp = OpNone

	if b.tree.Task == Regression {
		w := targetStats(region, b.cfg.TargetIndex)
		node.Value = dataset.ContinuousValue(w.mean)
	} else {
		counts := categoryCounts(region, b.cfg.TargetIndex, b.vocabSize)
		node.Value = dataset.CategoryValue(modeIndex(counts))
	}

	if b.cfg.KeepLeafInstances {
		node.Members = region
	}
}

// pruneTwinLeaves collapses a split whose children are both leaves with the
// same prediction (within equalTolerance for regression). The children are
// the two most recently appended arena entries in that case, so the arena
// shrinks by two and the caller re-emits this node as a leaf.
func (b *builder) pruneTwinLeaves(id int) bool {
	node := &b.tree.Nodes[id]
	left := &b.tree.Nodes[node.Left]
	right := &b.tree.Nodes[node.Right]

	if !left.IsLeaf() || !right.IsLeaf() {
		return false
	}

	equal := false
	if b.tree.Task == Classification {
		equal = left.Value.Category == right.Value.Category
	} else {
		equal = math.Abs(left.Value.Continuous-right.Value.Continuous) < equalTolerance
	}
	if !equal {
		return false
	}

	b.tree.Nodes = b.tree.Nodes[:id+1]
	b.tree.NodeCount -= 2
	b.tree.LeafCount -= 2
	return true
}
