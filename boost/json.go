package boost

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
	boostedObjectTag = "boosted_trees"

	boostedFileName    = "boosted.json"
	definitionFileName = "definition.json"
)

type boostedJSON struct {
	Object       string  `json:"object"`
	Type         int     `json:"type"`
	TargetIndex  int     `json:"index_of_feature_to_predict"`
	LearningRate float64 `json:"learning_rate"`
	Trees        int     `json:"number_of_trees"`
}

func treeFileName(index int) string {
	return fmt.Sprintf("tree_%d.json", index)
}

// Save writes the ensemble and its training definition into dir:
// boosted.json, definition.json and one tree_<n>.json per tree.
func (e *Ensemble) Save(dir string, def dataset.Definition) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating model directory")
	}

	header := boostedJSON{
		Object:       boostedObjectTag,
		Type:         int(tree.Regression),
		TargetIndex:  e.TargetIndex,
		LearningRate: e.LearningRate,
		Trees:        len(e.Trees),
	}
	raw, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	path := filepath.Join(dir, boostedFileName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrap(err, "writing boosted header")
	}

	if err := dataset.WriteDefinition(filepath.Join(dir, definitionFileName), def); err != nil {
		return err
	}
	for i, t := range e.Trees {
		if err := t.WriteFile(filepath.Join(dir, treeFileName(i))); err != nil {
			return err
		}
	}
	return nil
}

// Load reads an ensemble saved by Save, returning it with the definition it
// was trained with.
func Load(dir string) (*Ensemble, dataset.Definition, error) {
	path := filepath.Join(dir, boostedFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.NewModelFormatError(path, err.Error())
	}
	var header boostedJSON
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, nil, errors.NewModelFormatError(path, err.Error())
	}
	if header.Object != boostedObjectTag {
		return nil, nil, errors.NewModelFormatError(path, "json object is not a boosted tree ensemble")
	}
	if header.Type != int(tree.Regression) {
		return nil, nil, errors.NewModelFormatError(path, "boosted ensemble is not a regression model")
	}
	if header.Trees <= 0 {
		return nil, nil, errors.NewModelFormatError(path, "boosted ensemble has no trees")
	}

	def, err := dataset.ReadDefinition(filepath.Join(dir, definitionFileName))
	if err != nil {
		return nil, nil, err
	}

	e := &Ensemble{
		TargetIndex:  header.TargetIndex,
		LearningRate: header.LearningRate,
		Trees:        make([]*tree.Tree, header.Trees),
	}
	for i := range e.Trees {
		t, err := tree.ReadFile(filepath.Join(dir, treeFileName(i)))
		if err != nil {
			return nil, nil, err
		}
		e.Trees[i] = t
	}
	return e, def, nil
}
