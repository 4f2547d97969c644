// Package results aggregates model predictions into task-appropriate
// evaluation metrics. A Results collector is bound to a definition and a
// target feature, fed one (prediction, instance) pair at a time, and queried
// for scalar metrics by name or a printable summary.
package results

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/pkg/errors"
)

// Metric names accepted by Results.Metric.
const (
	MetricAccuracy = "accuracy"
	MetricMAE      = "mae"
	MetricRMSE     = "rmse"
)

// Results collects predictions against known targets and reports metrics.
// Metric returns NaN for names the collector does not compute.
type Results interface {
	Collect(prediction dataset.FeatureValue, inst *dataset.Instance)
	Metric(name string) float64
	Summary() string
	N() int
}

// ForTarget returns the collector matching the target feature's type:
// discrete targets get a ClassificationResults, continuous targets a
// RegressionResults.
func ForTarget(def dataset.Definition, targetIndex int) (Results, error) {
	if targetIndex < 0 || targetIndex >= len(def) {
		return nil, errors.NewValidationError("targetIndex", "out of range", targetIndex)
	}
	if def[targetIndex].Type == dataset.Discrete {
		return NewClassification(def, targetIndex), nil
	}
	return NewRegression(def, targetIndex), nil
}

// ClassificationResults tracks accuracy and a full confusion matrix over the
// target's category vocabulary.
type ClassificationResults struct {
	def         dataset.Definition
	targetIndex int
	correct     int
	total       int

	// confusion[predicted][actual], indexed by category.
	confusion [][]int
}

func NewClassification(def dataset.Definition, targetIndex int) *ClassificationResults {
	vocab := len(def[targetIndex].Categories)
	confusion := make([][]int, vocab)
	for i := range confusion {
		confusion[i] = make([]int, vocab)
	}
	return &ClassificationResults{
		def:         def,
		targetIndex: targetIndex,
		confusion:   confusion,
	}
}

func (r *ClassificationResults) Collect(prediction dataset.FeatureValue, inst *dataset.Instance) {
	actual := (*inst)[r.targetIndex].Category
	r.total++
	if prediction.Category == actual {
		r.correct++
	}
	if prediction.Category < len(r.confusion) && actual < len(r.confusion) {
		r.confusion[prediction.Category][actual]++
	}
}

func (r *ClassificationResults) N() int { return r.total }

// Accuracy is the fraction of predictions matching the actual category.
func (r *ClassificationResults) Accuracy() float64 {
	if r.total == 0 {
		return 0
	}
	return float64(r.correct) / float64(r.total)
}

func (r *ClassificationResults) Metric(name string) float64 {
	if name == MetricAccuracy {
		return r.Accuracy()
	}
	return math.NaN()
}

// Confusion returns the count of instances predicted as one category while
// actually belonging to another.
func (r *ClassificationResults) Confusion(predicted, actual int) int {
	return r.confusion[predicted][actual]
}

func (r *ClassificationResults) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d instances, accuracy %.4f\n", r.total, r.Accuracy())

	target := r.def[r.targetIndex]
	type cell struct {
		key   string
		count int
	}
	var cells []cell
	for p := range r.confusion {
		for a, n := range r.confusion[p] {
			if n == 0 {
				continue
			}
			key := fmt.Sprintf("%s->%s", target.CategoryName(p), target.CategoryName(a))
			cells = append(cells, cell{key, n})
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].key < cells[j].key })
	for _, c := range cells {
		fmt.Fprintf(&b, "  %s: %d\n", c.key, c.count)
	}
	return b.String()
}

// RegressionResults tracks mean absolute error and root mean squared error.
type RegressionResults struct {
	def         dataset.Definition
	targetIndex int
	total       int
	sumAbs      float64
	sumSquared  float64
}

func NewRegression(def dataset.Definition, targetIndex int) *RegressionResults {
	return &RegressionResults{def: def, targetIndex: targetIndex}
}

func (r *RegressionResults) Collect(prediction dataset.FeatureValue, inst *dataset.Instance) {
	diff := prediction.Continuous - (*inst)[r.targetIndex].Continuous
	r.total++
	r.sumAbs += math.Abs(diff)
	r.sumSquared += diff * diff
}

func (r *RegressionResults) N() int { return r.total }

func (r *RegressionResults) MAE() float64 {
	if r.total == 0 {
		return 0
	}
	return r.sumAbs / float64(r.total)
}

func (r *RegressionResults) RMSE() float64 {
	if r.total == 0 {
		return 0
	}
	return math.Sqrt(r.sumSquared / float64(r.total))
}

func (r *RegressionResults) Metric(name string) float64 {
	switch name {
	case MetricMAE:
		return r.MAE()
	case MetricRMSE:
		return r.RMSE()
	}
	return math.NaN()
}

func (r *RegressionResults) Summary() string {
	return fmt.Sprintf("%d instances, MAE %.6f, RMSE %.6f\n", r.total, r.MAE(), r.RMSE())
}
