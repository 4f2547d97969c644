package results

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grove-ml/grove/dataset"
)

func classificationDef(t *testing.T) dataset.Definition {
	t.Helper()
	target := &dataset.FeatureDesc{
		Name:       "Class",
		Type:       dataset.Discrete,
		Categories: []string{dataset.UnknownCategory, "cat", "dog"},
	}
	return dataset.Definition{
		{Name: "X", Type: dataset.Continuous},
		target,
	}
}

func regressionDef() dataset.Definition {
	return dataset.Definition{
		{Name: "X", Type: dataset.Continuous},
		{Name: "Y", Type: dataset.Continuous},
	}
}

func TestClassificationResults(t *testing.T) {
	def := classificationDef(t)
	r := NewClassification(def, 1)

	collect := func(predicted, actual int) {
		inst := dataset.Instance{dataset.ContinuousValue(0), dataset.CategoryValue(actual)}
		r.Collect(dataset.CategoryValue(predicted), &inst)
	}

	collect(1, 1)
	collect(1, 1)
	collect(2, 2)
	collect(1, 2) // miss

	require.Equal(t, 4, r.N())
	require.InDelta(t, 0.75, r.Accuracy(), 1e-12)
	require.InDelta(t, 0.75, r.Metric(MetricAccuracy), 1e-12)
	require.True(t, math.IsNaN(r.Metric(MetricRMSE)))

	require.Equal(t, 2, r.Confusion(1, 1))
	require.Equal(t, 1, r.Confusion(1, 2))
	require.Equal(t, 1, r.Confusion(2, 2))
	require.Equal(t, 0, r.Confusion(2, 1))

	summary := r.Summary()
	require.Contains(t, summary, "accuracy 0.7500")
	require.Contains(t, summary, "cat->dog: 1")
}

func TestRegressionResults(t *testing.T) {
	def := regressionDef()
	r := NewRegression(def, 1)

	collect := func(predicted, actual float64) {
		inst := dataset.Instance{dataset.ContinuousValue(0), dataset.ContinuousValue(actual)}
		r.Collect(dataset.ContinuousValue(predicted), &inst)
	}

	collect(1, 2) // error 1
	collect(5, 2) // error 3
	collect(2, 2) // error 0

	require.Equal(t, 3, r.N())
	require.InDelta(t, 4.0/3.0, r.MAE(), 1e-12)
	require.InDelta(t, math.Sqrt(10.0/3.0), r.RMSE(), 1e-12)
	require.InDelta(t, r.MAE(), r.Metric(MetricMAE), 1e-12)
	require.InDelta(t, r.RMSE(), r.Metric(MetricRMSE), 1e-12)
	require.True(t, math.IsNaN(r.Metric(MetricAccuracy)))
	require.True(t, strings.HasPrefix(r.Summary(), "3 instances"))
}

func TestForTarget(t *testing.T) {
	def := classificationDef(t)

	r, err := ForTarget(def, 1)
	require.NoError(t, err)
	require.IsType(t, &ClassificationResults{}, r)

	r, err = ForTarget(def, 0)
	require.NoError(t, err)
	require.IsType(t, &RegressionResults{}, r)

	_, err = ForTarget(def, 7)
	require.Error(t, err)
}

func TestEmptyResults(t *testing.T) {
	require.Equal(t, 0.0, NewClassification(classificationDef(t), 1).Accuracy())
	require.Equal(t, 0.0, NewRegression(regressionDef(), 1).MAE())
	require.Equal(t, 0.0, NewRegression(regressionDef(), 1).RMSE())
}
