// Package boost trains gradient-boosted tree ensembles for regression
// targets. Trees are fit sequentially against the residual of a running
// ensemble prediction; leaf values may be refined against a caller-supplied
// loss with a bracketed one-dimensional minimizer.
package boost

import (
	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/tree"
)

// Ensemble is a trained boosted sequence. The first tree is the base
// predictor and contributes at weight 1.0; every later tree is scaled by
// LearningRate.
type Ensemble struct {
	TargetIndex  int
	LearningRate float64
	Trees        []*tree.Tree
}

// weight returns the folding weight of the tree at the given position.
func (e *Ensemble) weight(treeIndex int) float64 {
	if treeIndex == 0 {
		return 1.0
	}
	return e.LearningRate
}

// Evaluate sums the weighted tree outputs for an instance.
func (e *Ensemble) Evaluate(inst dataset.Instance) dataset.FeatureValue {
	var sum float64
	for i, t := range e.Trees {
		sum += e.weight(i) * t.Evaluate(inst).Continuous
	}
	return dataset.ContinuousValue(sum)
}
