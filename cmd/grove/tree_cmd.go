package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/results"
	"github.com/grove-ml/grove/tree"
)

type treeCmdConfig struct {
	dataPath string
	target   string
	maxDepth int
	minLeaf  int
	outDir   string
}

func treeCmd() *cobra.Command {
	config := &treeCmdConfig{}
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Train a single decision tree",
		Long:  `Train one decision tree on a CSV training file and print its structure and training-set results`,
		Run: func(cmd *cobra.Command, args []string) {
			def, ds, targetIndex, err := loadTrainingData(config.dataPath, config.target)
			if err != nil {
				fail(1, err)
			}
			t, err := tree.Build(def, ds, tree.Config{
				TargetIndex:      targetIndex,
				MinLeafInstances: config.minLeaf,
				MaxDepth:         config.maxDepth,
			})
			if err != nil {
				fail(2, err)
			}

			fmt.Println(t.Summary(def))
			res, err := results.ForTarget(def, targetIndex)
			if err != nil {
				fail(2, err)
			}
			for _, inst := range ds {
				res.Collect(t.Evaluate(*inst), inst)
			}
			fmt.Print(res.Summary())

			if config.outDir != "" {
				if err := saveTreeModel(config.outDir, def, t); err != nil {
					fail(3, err)
				}
			}
		},
	}
	cmd.Flags().StringVar(&config.dataPath, "data", "", "path to the CSV training file (required)")
	cmd.Flags().StringVar(&config.target, "target", "", "name of the feature to predict (required)")
	cmd.Flags().IntVar(&config.maxDepth, "max-depth", 6, "maximum tree depth, 0 for unlimited")
	cmd.Flags().IntVar(&config.minLeaf, "min-leaf", 2, "minimum instances per leaf")
	cmd.Flags().StringVar(&config.outDir, "out", "", "directory to save the trained model into")
	return cmd
}

func saveTreeModel(dir string, def dataset.Definition, t *tree.Tree) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := dataset.WriteDefinition(filepath.Join(dir, "definition.json"), def); err != nil {
		return err
	}
	return t.WriteFile(filepath.Join(dir, "tree.json"))
}
