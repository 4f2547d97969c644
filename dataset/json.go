package dataset

import (
	"encoding/json"
	"os"

	"github.com/grove-ml/grove/pkg/errors"
)

type definitionFile struct {
	Object   string         `json:"object"`
	Features []*FeatureDesc `json:"features"`
}

const definitionObjectTag = "instance_definition"

// WriteDefinition persists an instance definition as JSON. Model directories
// store one so persisted trees can be evaluated against fresh data files.
func WriteDefinition(path string, def Definition) error {
	data, err := json.MarshalIndent(definitionFile{
		Object:   definitionObjectTag,
		Features: def,
	}, "", " ")
	if err != nil {
		return errors.Wrap(err, "encoding instance definition")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// ReadDefinition loads an instance definition previously written with
// WriteDefinition.
func ReadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var file definitionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.NewModelFormatError(path, err.Error())
	}
	if file.Object != definitionObjectTag {
		return nil, errors.NewModelFormatError(path, "not an instance definition")
	}
	if len(file.Features) == 0 {
		return nil, errors.NewModelFormatError(path, "empty feature list")
	}

	for _, fd := range file.Features {
		fd.rebuildCategoryIndex()
	}
	return Definition(file.Features), nil
}
