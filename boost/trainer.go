package boost

import (
	"math/rand/v2"
	"time"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/internal/brent"
	"github.com/grove-ml/grove/pkg/errors"
	"github.com/grove-ml/grove/pkg/log"
	"github.com/grove-ml/grove/tree"
)

// LossFunc scores a single prediction against the true target. Supplying one
// enables per-leaf refinement of each tree's structural constants.
type LossFunc func(target, prediction float64) float64

// GradientFunc recomputes an instance's residual from its true target and
// the running ensemble prediction. The default is target - prediction, the
// negative gradient of squared error.
type GradientFunc func(target, prediction float64) float64

// ProgressFunc is invoked once per completed iteration with the 1-based
// iteration number. Returning false stops boosting after that iteration; the
// partial ensemble is kept.
type ProgressFunc func(iteration int) bool

// Config controls boosted training. Trees counts the base predictor, so
// Trees=1 yields only the constant model.
type Config struct {
	// TargetIndex must name a continuous feature.
	TargetIndex int

	// Trees is the total number of boosting iterations. Defaults to 50.
	Trees int

	// LearningRate scales every tree after the base predictor. Must be in
	// (0, 1]. Defaults to 0.1.
	LearningRate float64

	// Subsample is the Bernoulli row-sampling probability per iteration.
	// Must be in (0, 1]. Defaults to 0.5.
	Subsample float64

	// MaxDepth per boosted tree. Defaults to 4.
	MaxDepth int

	// MinLeafInstances per tree node. Defaults to 2.
	MinLeafInstances int

	// FeaturesPerNode optionally subsamples features per node, as in forest
	// training. Zero considers all features.
	FeaturesPerNode int

	// SplitStrategy selects continuous candidate generation per boosted
	// tree. Under tree.StrategyMidpoints the per-feature candidate set is
	// thinned to 40 splits at random.
	SplitStrategy tree.SplitStrategy

	// Seed for the trainer RNG.
	Seed uint64

	// Loss enables leaf refinement when non-nil.
	Loss LossFunc

	// Gradient overrides the residual update. Nil means target - prediction.
	Gradient GradientFunc

	// Progress is the optional per-iteration callback.
	Progress ProgressFunc
}

const (
	defaultTrees       = 50
	defaultRate        = 0.1
	defaultSubsample   = 0.5
	defaultMaxDepth    = 4
	defaultMinLeaf     = 2
	defaultContCap     = 40
	refineTolerance    = 1e-8
	refineBracketScale = 100.0
)

func (cfg *Config) applyDefaults() {
	if cfg.Trees == 0 {
		cfg.Trees = defaultTrees
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = defaultRate
	}
	if cfg.Subsample == 0 {
		cfg.Subsample = defaultSubsample
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	if cfg.MinLeafInstances == 0 {
		cfg.MinLeafInstances = defaultMinLeaf
	}
	if cfg.Gradient == nil {
		cfg.Gradient = func(target, prediction float64) float64 { return target - prediction }
	}
}

func (cfg *Config) validate(def dataset.Definition, ds dataset.Dataset) error {
	if len(def) == 0 {
		return errors.NewValidationError("definition", "is empty", nil)
	}
	if len(ds) == 0 {
		return errors.NewValidationError("dataset", "is empty", nil)
	}
	if cfg.TargetIndex < 0 || cfg.TargetIndex >= len(def) {
		return errors.NewValidationError("TargetIndex", "out of range", cfg.TargetIndex)
	}
	if def[cfg.TargetIndex].Type != dataset.Continuous {
		return errors.NewValidationError("TargetIndex", "boosting requires a continuous target", def[cfg.TargetIndex].Name)
	}
	if cfg.Trees < 0 {
		return errors.NewValidationError("Trees", "must not be negative", cfg.Trees)
	}
	if cfg.LearningRate < 0 || cfg.LearningRate > 1 {
		return errors.NewValidationError("LearningRate", "must be in (0, 1]", cfg.LearningRate)
	}
	if cfg.Subsample < 0 || cfg.Subsample > 1 {
		return errors.NewValidationError("Subsample", "must be in (0, 1]", cfg.Subsample)
	}
	return nil
}

// Train fits cfg.Trees trees sequentially. The target slot of every instance
// is overwritten with the running residual during training; two scratch slots
// appended per instance hold the original target and the running ensemble
// prediction. Both are removed and the target restored before Train returns,
// on early stop as well as on completion.
func Train(def dataset.Definition, ds dataset.Dataset, cfg Config) (*Ensemble, error) {
	if err := cfg.validate(def, ds); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	logger := log.GetLoggerWithName("boost")
	start := time.Now()
	logger.Info("training boosted ensemble",
		log.TreesKey, cfg.Trees,
		log.SamplesKey, len(ds),
		log.FeaturesKey, len(def))

	// Scratch slot layout past the definition's features.
	originalSlot := len(def)
	predictionSlot := len(def) + 1
	for _, inst := range ds {
		*inst = append(*inst, (*inst)[cfg.TargetIndex], dataset.ContinuousValue(0))
	}
	defer func() {
		for _, inst := range ds {
			(*inst)[cfg.TargetIndex] = (*inst)[originalSlot]
			*inst = (*inst)[:originalSlot]
		}
	}()

	e := &Ensemble{
		TargetIndex:  cfg.TargetIndex,
		LearningRate: cfg.LearningRate,
	}
	rng := dataset.NewRNG(cfg.Seed)

	for i := 0; i < cfg.Trees; i++ {
		treeCfg := tree.Config{
			TargetIndex:         cfg.TargetIndex,
			MinLeafInstances:    cfg.MinLeafInstances,
			SplitStrategy:       cfg.SplitStrategy,
			MaxContinuousSplits: defaultContCap,
			FeaturesPerNode:     cfg.FeaturesPerNode,
			KeepLeafInstances:   cfg.Loss != nil,
			RNG:                 rng,
		}

		var sample dataset.Dataset
		if i == 0 {
			// Base predictor: depth is unconstrained but the min-leaf bound
			// covers the whole dataset, so the tree collapses to one leaf
			// holding the region mean.
			sample = ds
			treeCfg.MinLeafInstances = len(ds)
		} else {
			treeCfg.MaxDepth = cfg.MaxDepth
			sample = subsample(ds, cfg.Subsample, rng)
			if len(sample) == 0 {
				sample = ds
			}
		}

		t, err := tree.Build(def, sample, treeCfg)
		if err != nil {
			return nil, errors.Wrapf(err, "boosting iteration %d", i)
		}

		weight := 1.0
		if i > 0 {
			weight = cfg.LearningRate
		}
		if cfg.Loss != nil {
			refineLeaves(t, cfg.Loss, weight, originalSlot, predictionSlot)
			t.DropLeafMembers()
		}
		e.Trees = append(e.Trees, t)

		// Fold the new tree into the running prediction and recompute every
		// residual in the target slot.
		for _, inst := range ds {
			pred := (*inst)[predictionSlot].Continuous + weight*t.Evaluate(*inst).Continuous
			(*inst)[predictionSlot] = dataset.ContinuousValue(pred)
			residual := cfg.Gradient((*inst)[originalSlot].Continuous, pred)
			(*inst)[cfg.TargetIndex] = dataset.ContinuousValue(residual)
		}

		logger.Debug("boosted tree built", log.IterationKey, i+1)
		if cfg.Progress != nil && !cfg.Progress(i+1) {
			break
		}
	}

	logger.Info("boosted ensemble trained",
		log.TreesKey, len(e.Trees),
		log.DurationMsKey, time.Since(start).Milliseconds())
	return e, nil
}

// subsample draws a Bernoulli row sample with the given inclusion
// probability.
func subsample(ds dataset.Dataset, p float64, rng *rand.Rand) dataset.Dataset {
	out := make(dataset.Dataset, 0, int(p*float64(len(ds)))+1)
	for _, inst := range ds {
		if rng.Float64() < p {
			out = append(out, inst)
		}
	}
	return out
}

// refineLeaves replaces each leaf's RSS-fit constant with the minimizer of
// the total loss over the leaf's member instances, searched within
// [-100v, 100v] around the structural value v.
func refineLeaves(t *tree.Tree, loss LossFunc, weight float64, originalSlot, predictionSlot int) {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if !n.IsLeaf() || len(n.Members) == 0 {
			continue
		}
		v := n.Value.Continuous
		if v == 0 {
			continue
		}
		a, b := -refineBracketScale*v, refineBracketScale*v
		if a > b {
			a, b = b, a
		}
		total := func(x float64) float64 {
			var sum float64
			for _, inst := range n.Members {
				target := (*inst)[originalSlot].Continuous
				pred := (*inst)[predictionSlot].Continuous + weight*x
				sum += loss(target, pred)
			}
			return sum
		}
		refined, _ := brent.LocalMin(a, b, refineTolerance, refineTolerance, total)
		n.Value = dataset.ContinuousValue(refined)
	}
}
