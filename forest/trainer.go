package forest

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/pkg/errors"
	"github.com/grove-ml/grove/pkg/log"
	"github.com/grove-ml/grove/tree"
)

// Config controls forest training. Zero values for Trees, Workers,
// MinLeafInstances, MaxDepth and FeaturesPerNode take the documented
// defaults.
type Config struct {
	// TargetIndex is the feature the forest predicts.
	TargetIndex int

	// Trees is the ensemble size. Defaults to 100.
	Trees int

	// Workers is the number of goroutines building trees. Defaults to 1.
	// Worker RNG streams are seeded Seed+workerIndex, so the same seed with
	// a different worker count yields a structurally different forest.
	Workers int

	// Seed for the per-worker RNG streams.
	Seed uint64

	// MinLeafInstances per tree node. Defaults to 2.
	MinLeafInstances int

	// MaxDepth per tree. Defaults to 10.
	MaxDepth int

	// FeaturesPerNode is the per-node feature subsample size. Defaults to
	// round(sqrt(features-1)).
	FeaturesPerNode int

	// SplitStrategy and MaxContinuousSplits pass through to the tree builder.
	SplitStrategy       tree.SplitStrategy
	MaxContinuousSplits int
}

const (
	defaultTrees    = 100
	defaultMinLeaf  = 2
	defaultMaxDepth = 10
)

func (cfg *Config) applyDefaults(featureCount int) {
	if cfg.Trees == 0 {
		cfg.Trees = defaultTrees
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.MinLeafInstances == 0 {
		cfg.MinLeafInstances = defaultMinLeaf
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	if cfg.FeaturesPerNode == 0 {
		cfg.FeaturesPerNode = int(math.Round(math.Sqrt(float64(featureCount - 1))))
	}
}

// Train grows cfg.Trees trees on bootstrap samples of ds. With more than one
// worker the trees are partitioned as evenly as possible, remainder to worker
// 0, and built concurrently against the shared dataset. Failures surface only
// after every worker has joined.
func Train(def dataset.Definition, ds dataset.Dataset, cfg Config) (*Forest, error) {
	if len(def) == 0 {
		return nil, errors.NewValidationError("definition", "is empty", nil)
	}
	if len(ds) == 0 {
		return nil, errors.NewValidationError("dataset", "is empty", nil)
	}
	if cfg.TargetIndex < 0 || cfg.TargetIndex >= len(def) {
		return nil, errors.NewValidationError("TargetIndex", "out of range", cfg.TargetIndex)
	}
	if cfg.Trees < 0 {
		return nil, errors.NewValidationError("Trees", "must not be negative", cfg.Trees)
	}
	if cfg.Workers < 0 {
		return nil, errors.NewValidationError("Workers", "must not be negative", cfg.Workers)
	}
	cfg.applyDefaults(len(def))

	task := tree.Regression
	if def[cfg.TargetIndex].Type == dataset.Discrete {
		task = tree.Classification
	}

	logger := log.GetLoggerWithName("forest")
	start := time.Now()
	logger.Info("training forest",
		log.TreesKey, cfg.Trees,
		log.WorkerKey, cfg.Workers,
		log.SamplesKey, len(ds),
		log.FeaturesKey, len(def))

	f := &Forest{
		TargetIndex: cfg.TargetIndex,
		Task:        task,
		Trees:       make([]*tree.Tree, cfg.Trees),
		OutOfBag:    make([][]bool, cfg.Trees),
	}

	perWorker := cfg.Trees / cfg.Workers
	remainder := cfg.Trees % cfg.Workers

	var wg sync.WaitGroup
	workerErrs := make([]error, cfg.Workers)
	offset := 0
	for w := 0; w < cfg.Workers; w++ {
		count := perWorker
		if w == 0 {
			count += remainder
		}
		if count == 0 {
			continue
		}
		wg.Add(1)
		go func(worker, first, count int) {
			defer wg.Done()
			rng := dataset.NewRNG(cfg.Seed + uint64(worker))
			for i := first; i < first+count; i++ {
				t, oob, err := buildOne(def, ds, cfg, rng)
				if err != nil {
					workerErrs[worker] = errors.Wrapf(err, "worker %d, tree %d", worker, i)
					return
				}
				f.Trees[i] = t
				f.OutOfBag[i] = oob
			}
		}(w, offset, count)
		offset += count
	}
	wg.Wait()

	for _, err := range workerErrs {
		if err != nil {
			return nil, err
		}
	}

	f.Importance = make([]tree.FeatureImportance, len(def))
	for _, t := range f.Trees {
		for i, imp := range t.Importance {
			f.Importance[i].SumScoreDelta += imp.SumScoreDelta
			f.Importance[i].Count += imp.Count
		}
	}

	logger.Info("forest trained",
		log.TreesKey, len(f.Trees),
		log.DurationMsKey, time.Since(start).Milliseconds())
	return f, nil
}

// buildOne draws a bootstrap sample with rng and grows a single tree on it.
// The returned mask marks the instances the sample never drew.
func buildOne(def dataset.Definition, ds dataset.Dataset, cfg Config, rng *rand.Rand) (*tree.Tree, []bool, error) {
	n := len(ds)
	sample := make(dataset.Dataset, 0, n)
	inBag := make([]bool, n)
	for i := 0; i < n; i++ {
		k := int(rng.Uint64() % uint64(n))
		sample = append(sample, ds[k])
		inBag[k] = true
	}
	oob := make([]bool, n)
	for i := range inBag {
		oob[i] = !inBag[i]
	}

	t, err := tree.Build(def, sample, tree.Config{
		TargetIndex:         cfg.TargetIndex,
		MinLeafInstances:    cfg.MinLeafInstances,
		MaxDepth:            cfg.MaxDepth,
		FeaturesPerNode:     cfg.FeaturesPerNode,
		SplitStrategy:       cfg.SplitStrategy,
		MaxContinuousSplits: cfg.MaxContinuousSplits,
		RNG:                 rng,
	})
	if err != nil {
		return nil, nil, err
	}
	return t, oob, nil
}
