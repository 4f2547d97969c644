package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grove-ml/grove/boost"
	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/forest"
	"github.com/grove-ml/grove/results"
	"github.com/grove-ml/grove/tree"
)

type predictCmdConfig struct {
	modelDir string
	dataPath string
}

// evaluator is satisfied by trees, forests and boosted ensembles.
type evaluator interface {
	Evaluate(inst dataset.Instance) dataset.FeatureValue
}

func predictCmd() *cobra.Command {
	config := &predictCmdConfig{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Evaluate a saved model against a CSV file",
		Long:  `Load a model directory written by the tree, forest or boost commands, evaluate every row of a CSV file with it, and print the results summary`,
		Run: func(cmd *cobra.Command, args []string) {
			if config.modelDir == "" {
				fail(1, fmt.Errorf("required model flag was not set"))
			}
			if config.dataPath == "" {
				fail(1, fmt.Errorf("required data flag was not set"))
			}

			model, def, targetIndex, err := loadModel(config.modelDir)
			if err != nil {
				fail(2, err)
			}
			ds, err := dataset.LoadCSVUsingDefinition(config.dataPath, def)
			if err != nil {
				fail(3, err)
			}

			res, err := results.ForTarget(def, targetIndex)
			if err != nil {
				fail(3, err)
			}
			for _, inst := range ds {
				res.Collect(model.Evaluate(*inst), inst)
			}
			fmt.Print(res.Summary())
		},
	}
	cmd.Flags().StringVar(&config.modelDir, "model", "", "model directory written by tree, forest or boost (required)")
	cmd.Flags().StringVar(&config.dataPath, "data", "", "path to the CSV file to evaluate (required)")
	return cmd
}

// loadModel sniffs the model kind from the header files present in dir.
func loadModel(dir string) (evaluator, dataset.Definition, int, error) {
	if _, err := os.Stat(filepath.Join(dir, "boosted.json")); err == nil {
		e, def, err := boost.Load(dir)
		if err != nil {
			return nil, nil, 0, err
		}
		return e, def, e.TargetIndex, nil
	}
	if _, err := os.Stat(filepath.Join(dir, "forest.json")); err == nil {
		f, def, err := forest.Load(dir)
		if err != nil {
			return nil, nil, 0, err
		}
		return f, def, f.TargetIndex, nil
	}
	if _, err := os.Stat(filepath.Join(dir, "tree.json")); err == nil {
		t, err := tree.ReadFile(filepath.Join(dir, "tree.json"))
		if err != nil {
			return nil, nil, 0, err
		}
		def, err := dataset.ReadDefinition(filepath.Join(dir, "definition.json"))
		if err != nil {
			return nil, nil, 0, err
		}
		return t, def, t.TargetIndex, nil
	}
	return nil, nil, 0, fmt.Errorf("no model found in %s", dir)
}
