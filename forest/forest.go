// Package forest trains and evaluates random forests of decision trees.
// Trees are grown on bootstrap samples with per-node feature subsampling and
// may be built across several workers; the out-of-bag complement of each
// bootstrap sample supports error estimation without a held-out set.
package forest

import (
	"math"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/pkg/errors"
	"github.com/grove-ml/grove/results"
	"github.com/grove-ml/grove/tree"
)

// Forest is a trained ensemble. OutOfBag holds one membership mask per tree
// over the training dataset; it is populated by Train and not persisted.
type Forest struct {
	TargetIndex int
	Task        tree.TaskType
	Trees       []*tree.Tree
	Importance  []tree.FeatureImportance
	OutOfBag    [][]bool
}

// Evaluate predicts an instance using all trees. Classification takes the
// majority vote, ties broken by the lowest category index; regression takes
// the mean of the tree outputs.
func (f *Forest) Evaluate(inst dataset.Instance) dataset.FeatureValue {
	return f.evaluateWith(inst, func(int) bool { return true })
}

func (f *Forest) evaluateWith(inst dataset.Instance, use func(treeIndex int) bool) dataset.FeatureValue {
	if f.Task == tree.Regression {
		var sum float64
		var n int
		for i, t := range f.Trees {
			if !use(i) {
				continue
			}
			sum += t.Evaluate(inst).Continuous
			n++
		}
		if n == 0 {
			return dataset.ContinuousValue(0)
		}
		return dataset.ContinuousValue(sum / float64(n))
	}

	var votes []int
	voted := false
	for i, t := range f.Trees {
		if !use(i) {
			continue
		}
		c := t.Evaluate(inst).Category
		if c >= len(votes) {
			votes = append(votes, make([]int, c+1-len(votes))...)
		}
		votes[c]++
		voted = true
	}
	if !voted {
		return dataset.CategoryValue(dataset.UnknownCategoryIndex)
	}
	best := 0
	for c := 1; c < len(votes); c++ {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return dataset.CategoryValue(best)
}

// EvaluateOOB scores every training instance using only the trees that kept
// it out of their bootstrap sample. Instances in every tree's sample are
// skipped. The dataset must be the one the forest was trained on.
func (f *Forest) EvaluateOOB(def dataset.Definition, ds dataset.Dataset) (results.Results, error) {
	if len(f.OutOfBag) != len(f.Trees) {
		return nil, errors.NewNotTrainedError("forest", "EvaluateOOB")
	}
	res, err := results.ForTarget(def, f.TargetIndex)
	if err != nil {
		return nil, err
	}
	for i, inst := range ds {
		covered := false
		for _, oob := range f.OutOfBag {
			if i < len(oob) && oob[i] {
				covered = true
				break
			}
		}
		if !covered {
			continue
		}
		pred := f.evaluateWith(*inst, func(treeIndex int) bool {
			oob := f.OutOfBag[treeIndex]
			return i < len(oob) && oob[i]
		})
		res.Collect(pred, inst)
	}
	return res, nil
}

// Importances returns per-feature importance scores normalized so the
// highest-scoring feature reads 100. Features that never won a split score 0.
func (f *Forest) Importances() []float64 {
	out := make([]float64, len(f.Importance))
	var top float64
	for i := range f.Importance {
		out[i] = f.Importance[i].SumScoreDelta
		top = math.Max(top, out[i])
	}
	if top > 0 {
		for i := range out {
			out[i] = out[i] / top * 100
		}
	}
	return out
}
