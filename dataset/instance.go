package dataset

import (
	"math/rand/v2"
)

// Instance is one row of feature values, parallel to a Definition. Instances
// are shared by reference across bootstraps and folds and are never copied.
type Instance []FeatureValue

// Dataset is an ordered collection of instance references. It is safe for
// concurrent readers; the learning core never mutates it (boosting's scratch
// slots excepted, see the boost package).
type Dataset []*Instance

// NewRNG builds a deterministic PCG stream from a seed. All randomized
// behavior in grove flows through explicitly-passed streams like this one;
// there is no process-global RNG in library code.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Shuffle permutes ds in place with a Fisher–Yates walk over the given
// stream, so identical seeds give identical orders on every platform.
func Shuffle(ds Dataset, rng *rand.Rand) {
	for i := len(ds) - 1; i > 0; i-- {
		j := int(rng.Uint64() % uint64(i+1))
		ds[i], ds[j] = ds[j], ds[i]
	}
}

// SplitTrainTest shuffles a copy of ds deterministically and splits it with
// the first fraction of rows as training data and the remainder as test.
func SplitTrainTest(ds Dataset, fraction float64, seed uint64) (train, test Dataset) {
	shuffled := make(Dataset, len(ds))
	copy(shuffled, ds)
	Shuffle(shuffled, NewRNG(seed))

	cut := int(fraction * float64(len(shuffled)))
	if cut < 0 {
		cut = 0
	}
	if cut > len(shuffled) {
		cut = len(shuffled)
	}
	return shuffled[:cut], shuffled[cut:]
}
