package tree

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/grove-ml/grove/dataset"
)

// SplitStrategy selects how continuous split thresholds are proposed.
type SplitStrategy int

const (
	// StrategyMeanSD proposes the region mean, and mean ± sd/2 when the
	// sample standard deviation is positive. This is the default.
	StrategyMeanSD SplitStrategy = iota
	// StrategyMidpoints enumerates the midpoints between adjacent distinct
	// sorted values, optionally thinned to MaxContinuousSplits at random.
	// Exhaustive and much more expensive than StrategyMeanSD.
	StrategyMidpoints
)

// equalTolerance bounds when two continuous values are treated as equal,
// both for midpoint deduplication and twin-leaf pruning.
const equalTolerance = 1e-8

// candidate is a proposed binary test for a region, scored by the builder.
// Transient: created and discarded per node evaluation.
type candidate struct {
	featureIndex int
	featureType  dataset.FeatureType
	value        dataset.FeatureValue
	leftOp       Operator
	rightOp      Operator

	leftScore  float64
	rightScore float64
}

// addDiscreteCandidates enumerates equality tests over the category levels
// present in the region. A single level yields nothing; exactly two levels
// yield one candidate since testing the other is redundant.
func (b *builder) addDiscreteCandidates(featureIndex int, region dataset.Dataset, out []candidate) []candidate {
	vocab := len(b.def[featureIndex].Categories)
	present := make([]bool, vocab)
	distinct := 0
	for _, inst := range region {
		idx := (*inst)[featureIndex].Category
		if idx >= 0 && idx < vocab && !present[idx] {
			present[idx] = true
			distinct++
		}
	}
	if distinct < 2 {
		return out
	}

	remaining := distinct
	if distinct == 2 {
		remaining = 1
	}
	for idx := 0; idx < vocab && remaining > 0; idx++ {
		if !present[idx] {
			continue
		}
		out = append(out, candidate{
			featureIndex: featureIndex,
			featureType:  dataset.Discrete,
			value:        dataset.CategoryValue(idx),
			leftOp:       OpNotEqual,
			rightOp:      OpEqual,
		})
		remaining--
	}
	return out
}

// addContinuousCandidates proposes thresholds for one continuous feature
// according to the configured strategy.
func (b *builder) addContinuousCandidates(featureIndex int, region dataset.Dataset, out []candidate) []candidate {
	if b.cfg.SplitStrategy == StrategyMidpoints {
		return b.addMidpointCandidates(featureIndex, region, out)
	}

	var w welford
	for _, inst := range region {
		w.add((*inst)[featureIndex].Continuous)
	}

	thresholds := []float64{w.mean}
	if sd := w.sd(); sd > 0 {
		thresholds = append(thresholds, w.mean+sd/2, w.mean-sd/2)
	}

	for _, threshold := range thresholds {
		out = append(out, candidate{
			featureIndex: featureIndex,
			featureType:  dataset.Continuous,
			value:        dataset.ContinuousValue(threshold),
			leftOp:       OpLessOrEqual,
			rightOp:      OpGreater,
		})
	}
	return out
}

func (b *builder) addMidpointCandidates(featureIndex int, region dataset.Dataset, out []candidate) []candidate {
	column := make([]float64, len(region))
	for i, inst := range region {
		column[i] = (*inst)[featureIndex].Continuous
	}
	sort.Float64s(column)

	var feature []candidate
	for i := 0; i+1 < len(column); i++ {
		if math.Abs(column[i]-column[i+1]) < equalTolerance {
			continue
		}
		feature = append(feature, candidate{
			featureIndex: featureIndex,
			featureType:  dataset.Continuous,
			value:        dataset.ContinuousValue((column[i] + column[i+1]) / 2.0),
			leftOp:       OpLessOrEqual,
			rightOp:      OpGreater,
		})
	}

	if limit := b.cfg.MaxContinuousSplits; limit > 0 && b.cfg.RNG != nil && len(feature) > limit {
		shuffleCandidates(feature, b.cfg.RNG)
		feature = feature[:limit]
	}

	return append(out, feature...)
}

func shuffleCandidates(cands []candidate, rng *rand.Rand) {
	for i := len(cands) - 1; i > 0; i-- {
		j := int(rng.Uint64() % uint64(i+1))
		cands[i], cands[j] = cands[j], cands[i]
	}
}

// pickRandomFeatures draws cfg.FeaturesPerNode distinct feature indices,
// excluding the predicted feature, without replacement. The draw order is
// the only RNG consumption during a build, so identical seeds reproduce
// identical trees.
func (b *builder) pickRandomFeatures() map[int]bool {
	count := b.cfg.FeaturesPerNode
	if count <= 0 || count > len(b.def)-1 {
		return nil
	}

	selected := make(map[int]bool, count)
	for len(selected) < count {
		featureIndex := int(b.cfg.RNG.Uint64() % uint64(len(b.def)))
		if featureIndex == b.cfg.TargetIndex || selected[featureIndex] {
			continue
		}
		selected[featureIndex] = true
	}
	return selected
}

// generateCandidates walks features in definition order, skipping the target
// and (when subsampling) features outside the drawn set.
func (b *builder) generateCandidates(region dataset.Dataset) []candidate {
	subset := b.pickRandomFeatures()

	var out []candidate
	for featureIndex, fd := range b.def {
		if featureIndex == b.cfg.TargetIndex {
			continue
		}
		if subset != nil && !subset[featureIndex] {
			continue
		}
		switch fd.Type {
		case dataset.Discrete:
			out = b.addDiscreteCandidates(featureIndex, region, out)
		case dataset.Continuous:
			out = b.addContinuousCandidates(featureIndex, region, out)
		}
	}
	return out
}

// partition splits a region by a candidate's left-branch test.
func partition(region dataset.Dataset, cand *candidate) (left, right dataset.Dataset) {
	node := Node{
		FeatureIndex: cand.featureIndex,
		FeatureType:  cand.featureType,
		Value:        cand.value,
		LeftOp:       cand.leftOp,
		RightOp:      cand.rightOp,
	}
	for _, inst := range region {
		if satisfiesLeft(&node, *inst) {
			left = append(left, inst)
		} else {
			right = append(right, inst)
		}
	}
	return left, right
}
