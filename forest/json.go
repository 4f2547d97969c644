package forest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/pkg/errors"
	"github.com/grove-ml/grove/tree"
)

const (
	forestObjectTag = "dt_forest"

	forestFileName     = "forest.json"
	definitionFileName = "definition.json"
)

type forestJSON struct {
	Object      string `json:"object"`
	Type        int    `json:"type"`
	TargetIndex int    `json:"index_of_feature_to_predict"`
	Trees       int    `json:"number_of_trees"`
}

func treeFileName(index int) string {
	return fmt.Sprintf("tree_%d.json", index)
}

// Save writes the forest and its training definition into dir: forest.json,
// definition.json and one tree_<n>.json per tree. Out-of-bag masks are not
// persisted. The directory is created if needed.
func (f *Forest) Save(dir string, def dataset.Definition) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating model directory")
	}

	header := forestJSON{
		Object:      forestObjectTag,
		Type:        int(f.Task),
		TargetIndex: f.TargetIndex,
		Trees:       len(f.Trees),
	}
	raw, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	path := filepath.Join(dir, forestFileName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrap(err, "writing forest header")
	}

	if err := dataset.WriteDefinition(filepath.Join(dir, definitionFileName), def); err != nil {
		return err
	}
	for i, t := range f.Trees {
		if err := t.WriteFile(filepath.Join(dir, treeFileName(i))); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a forest saved by Save, returning the ensemble and the
// definition it was trained with.
func Load(dir string) (*Forest, dataset.Definition, error) {
	path := filepath.Join(dir, forestFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.NewModelFormatError(path, err.Error())
	}
	var header forestJSON
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, nil, errors.NewModelFormatError(path, err.Error())
	}
	if header.Object != forestObjectTag {
		return nil, nil, errors.NewModelFormatError(path, "json object is not a forest")
	}
	if header.Trees <= 0 {
		return nil, nil, errors.NewModelFormatError(path, "forest has no trees")
	}

	def, err := dataset.ReadDefinition(filepath.Join(dir, definitionFileName))
	if err != nil {
		return nil, nil, err
	}

	f := &Forest{
		TargetIndex: header.TargetIndex,
		Task:        tree.TaskType(header.Type),
		Trees:       make([]*tree.Tree, header.Trees),
	}
	for i := range f.Trees {
		t, err := tree.ReadFile(filepath.Join(dir, treeFileName(i)))
		if err != nil {
			return nil, nil, err
		}
		f.Trees[i] = t
	}

	// Importance accumulators live only in trained forests; the persisted
	// format carries node structure alone.
	f.Importance = make([]tree.FeatureImportance, len(def))
	return f, def, nil
}
