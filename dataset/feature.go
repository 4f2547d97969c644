// Package dataset holds grove's data model: feature descriptors, instances,
// and the CSV/JSON loaders that produce them. Everything downstream (trees,
// forests, boosting) consumes this package read-only; feature index into the
// definition is the sole feature identity used by the learning core.
package dataset

import (
	"math"

	"github.com/grove-ml/grove/pkg/errors"
)

// FeatureType distinguishes continuous features from discrete (categorical)
// ones. The type of the predicted feature decides between regression and
// classification.
type FeatureType int

const (
	// Continuous features hold a scalar value.
	Continuous FeatureType = iota
	// Discrete features hold a category index into the descriptor vocabulary.
	Discrete
)

func (t FeatureType) String() string {
	if t == Discrete {
		return "discrete"
	}
	return "continuous"
}

// UnknownCategoryIndex is reserved in every discrete vocabulary for
// missing/unseen categories.
const UnknownCategoryIndex = 0

// UnknownCategory is the vocabulary entry at UnknownCategoryIndex.
const UnknownCategory = "<unknown>"

// MissingContinuousValue is the sentinel stored for missing continuous
// values when the feature preserves missing data.
var MissingContinuousValue = -math.MaxFloat64

// FeatureValue is the tagged value of one feature of one instance. Which
// field is meaningful is decided by the FeatureType in the definition.
type FeatureValue struct {
	Continuous float64
	Category   int
}

// ContinuousValue builds a FeatureValue holding a scalar.
func ContinuousValue(v float64) FeatureValue {
	return FeatureValue{Continuous: v}
}

// CategoryValue builds a FeatureValue holding a category index.
func CategoryValue(index int) FeatureValue {
	return FeatureValue{Category: index}
}

// FeatureDesc describes one feature column: its name, type, distribution
// statistics, and (for discrete features) the category vocabulary. It is
// immutable once the dataset is loaded.
type FeatureDesc struct {
	Name            string      `json:"name"`
	Type            FeatureType `json:"type"`
	Missing         int         `json:"missing"`
	PreserveMissing bool        `json:"preserve_missing"`

	// Continuous features.
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`

	// Discrete features. Categories[0] is always UnknownCategory and
	// CategoryCounts runs parallel to Categories.
	Categories     []string `json:"categories,omitempty"`
	CategoryCounts []int    `json:"category_counts,omitempty"`
	ModeIndex      int      `json:"mode_index,omitempty"`

	categoryIndex map[string]int
}

// CategoryIndexOf returns the vocabulary index for a category name, or
// UnknownCategoryIndex when the category was never seen.
func (fd *FeatureDesc) CategoryIndexOf(name string) int {
	if idx, ok := fd.categoryIndex[name]; ok {
		return idx
	}
	return UnknownCategoryIndex
}

// CategoryName returns the vocabulary entry for index, or UnknownCategory
// when the index is out of range.
func (fd *FeatureDesc) CategoryName(index int) string {
	if index < 0 || index >= len(fd.Categories) {
		return UnknownCategory
	}
	return fd.Categories[index]
}

// Definition is the ordered list of feature descriptors for a dataset.
// Index stability is an invariant: every model refers to features by their
// position here.
type Definition []*FeatureDesc

// IndexOfFeatureNamed returns the column index of the named feature.
func (def Definition) IndexOfFeatureNamed(name string) (int, error) {
	for i, fd := range def {
		if fd.Name == name {
			return i, nil
		}
	}
	return 0, errors.Newf("grove: no feature named %q in instance definition", name)
}

// rebuildCategoryIndex restores the name→index lookup after JSON decode or
// vocabulary construction.
func (fd *FeatureDesc) rebuildCategoryIndex() {
	fd.categoryIndex = make(map[string]int, len(fd.Categories))
	for i, name := range fd.Categories {
		fd.categoryIndex[name] = i
	}
}
