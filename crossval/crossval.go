// Package crossval runs k-fold cross-validation over any trainer that
// produces an instance evaluator. The dataset is shuffled once with a fixed
// seed and partitioned into contiguous folds; each fold trains a fresh model
// on its complement and scores the held-out rows.
package crossval

import (
	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/pkg/errors"
	"github.com/grove-ml/grove/pkg/log"
	"github.com/grove-ml/grove/results"
)

// Evaluator predicts the target value of a single instance. Trees, forests
// and boosted ensembles all satisfy it.
type Evaluator interface {
	Evaluate(inst dataset.Instance) dataset.FeatureValue
}

// Trainer builds a fresh model from a training partition.
type Trainer func(def dataset.Definition, train dataset.Dataset) (Evaluator, error)

// Config controls the fold layout.
type Config struct {
	// TargetIndex is the feature scored by the per-fold Results.
	TargetIndex int

	// Folds is k. Folds == 1 trains on the full shuffled dataset and scores
	// it in-sample. Defaults to 10.
	Folds int

	// Seed drives the one-time shuffle.
	Seed uint64
}

// Summary holds one Results per fold in fold order.
type Summary struct {
	Folds []results.Results
}

// MeanMetric averages a scalar metric across folds.
func (s *Summary) MeanMetric(name string) float64 {
	if len(s.Folds) == 0 {
		return 0
	}
	var sum float64
	for _, r := range s.Folds {
		sum += r.Metric(name)
	}
	return sum / float64(len(s.Folds))
}

// Run shuffles ds with cfg.Seed, slices it into cfg.Folds contiguous test
// windows of size floor(n/k), and trains one model per fold on the window's
// complement. Remainder rows past the last window are only ever trained on.
func Run(def dataset.Definition, ds dataset.Dataset, cfg Config, train Trainer) (*Summary, error) {
	if len(def) == 0 {
		return nil, errors.NewValidationError("definition", "is empty", nil)
	}
	if len(ds) == 0 {
		return nil, errors.NewValidationError("dataset", "is empty", nil)
	}
	if cfg.TargetIndex < 0 || cfg.TargetIndex >= len(def) {
		return nil, errors.NewValidationError("TargetIndex", "out of range", cfg.TargetIndex)
	}
	if cfg.Folds == 0 {
		cfg.Folds = 10
	}
	if cfg.Folds < 0 || cfg.Folds > len(ds) {
		return nil, errors.NewValidationError("Folds", "must be between 1 and the dataset size", cfg.Folds)
	}
	if train == nil {
		return nil, errors.NewValidationError("train", "is required", nil)
	}

	logger := log.GetLoggerWithName("crossval")
	shuffled := make(dataset.Dataset, len(ds))
	copy(shuffled, ds)
	dataset.Shuffle(shuffled, dataset.NewRNG(cfg.Seed))

	foldSize := len(shuffled) / cfg.Folds
	summary := &Summary{}
	for f := 0; f < cfg.Folds; f++ {
		test := shuffled[f*foldSize : (f+1)*foldSize]

		trainSet := make(dataset.Dataset, 0, len(shuffled)-len(test))
		trainSet = append(trainSet, shuffled[:f*foldSize]...)
		trainSet = append(trainSet, shuffled[(f+1)*foldSize:]...)
		if len(trainSet) == 0 {
			trainSet = shuffled
		}

		logger.Debug("training fold",
			log.OperationKey, "fold",
			log.IterationKey, f+1,
			log.SamplesKey, len(trainSet))

		model, err := train(def, trainSet)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", f+1)
		}

		res, err := results.ForTarget(def, cfg.TargetIndex)
		if err != nil {
			return nil, err
		}
		for _, inst := range test {
			res.Collect(model.Evaluate(*inst), inst)
		}
		summary.Folds = append(summary.Folds, res)
	}
	return summary, nil
}
