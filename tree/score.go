package tree

import (
	"math"

	"github.com/grove-ml/grove/dataset"
)

// welford accumulates the online mean and sum of squared deviations of a
// stream of values in a single numerically stable pass. The same pass feeds
// both candidate generation (mean, sd) and regression scoring (rss).
type welford struct {
	n    int
	mean float64
	m2   float64
}

func (w *welford) add(v float64) {
	w.n++
	delta := v - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (v - w.mean)
}

// rss is the residual sum of squares around the running mean.
func (w *welford) rss() float64 {
	return w.m2
}

// sd is the sample standard deviation, 0 for fewer than two values.
func (w *welford) sd() float64 {
	if w.n < 2 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.n-1))
}

// targetStats runs the online pass over a region's target column.
func targetStats(region dataset.Dataset, targetIndex int) welford {
	var w welford
	for _, inst := range region {
		w.add((*inst)[targetIndex].Continuous)
	}
	return w
}

// categoryCounts tallies the region's label distribution over the target
// vocabulary. Index order is the vocabulary order, so every consumer that
// scans it is deterministic regardless of map iteration concerns.
func categoryCounts(region dataset.Dataset, targetIndex, vocabularySize int) []int {
	counts := make([]int, vocabularySize)
	for _, inst := range region {
		idx := (*inst)[targetIndex].Category
		if idx >= 0 && idx < vocabularySize {
			counts[idx]++
		}
	}
	return counts
}

// giniImpurity is Σ p·(1−p) over the label distribution.
func giniImpurity(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	score := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		score += p * (1.0 - p)
	}
	return score
}

// modeIndex returns the most frequent label, breaking ties by keeping the
// first maximum in ascending index order.
func modeIndex(counts []int) int {
	mode, best := 0, 0
	for idx, c := range counts {
		if c > best {
			mode, best = idx, c
		}
	}
	return mode
}

// scoreRegion computes the impurity (classification) or dispersion
// (regression) of a region. Empty regions score 0.
func (b *builder) scoreRegion(region dataset.Dataset) float64 {
	if len(region) == 0 {
		return 0
	}
	if b.tree.Task == Regression {
		w := targetStats(region, b.cfg.TargetIndex)
		return w.rss()
	}
	counts := categoryCounts(region, b.cfg.TargetIndex, b.vocabSize)
	return giniImpurity(counts, len(region))
}

// combinedScore folds two child scores into the candidate's total: plain sum
// of RSS for regression, size-weighted average impurity for classification.
func (b *builder) combinedScore(leftScore, rightScore float64, leftN, rightN, totalN int) float64 {
	if b.tree.Task == Regression {
		return leftScore + rightScore
	}
	lw := float64(leftN) / float64(totalN)
	rw := float64(rightN) / float64(totalN)
	return lw*leftScore + rw*rightScore
}
