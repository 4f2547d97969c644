package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grove-ml/grove/forest"
	"github.com/grove-ml/grove/results"
)

type forestCmdConfig struct {
	dataPath string
	target   string
	trees    int
	workers  int
	seed     uint64
	maxDepth int
	minLeaf  int
	oob      bool
	outDir   string
}

func forestCmd() *cobra.Command {
	config := &forestCmdConfig{}
	cmd := &cobra.Command{
		Use:   "forest",
		Short: "Train a random forest",
		Long:  `Train a bagged forest of decision trees on a CSV training file, optionally reporting out-of-bag results and feature importance`,
		Run: func(cmd *cobra.Command, args []string) {
			def, ds, targetIndex, err := loadTrainingData(config.dataPath, config.target)
			if err != nil {
				fail(1, err)
			}
			f, err := forest.Train(def, ds, forest.Config{
				TargetIndex:      targetIndex,
				Trees:            config.trees,
				Workers:          config.workers,
				Seed:             config.seed,
				MaxDepth:         config.maxDepth,
				MinLeafInstances: config.minLeaf,
			})
			if err != nil {
				fail(2, err)
			}

			if config.oob {
				res, err := f.EvaluateOOB(def, ds)
				if err != nil {
					fail(2, err)
				}
				fmt.Println("out-of-bag results:")
				fmt.Print(res.Summary())
			} else {
				res, err := results.ForTarget(def, targetIndex)
				if err != nil {
					fail(2, err)
				}
				for _, inst := range ds {
					res.Collect(f.Evaluate(*inst), inst)
				}
				fmt.Println("training-set results:")
				fmt.Print(res.Summary())
			}

			fmt.Println("feature importance:")
			for i, score := range f.Importances() {
				if i == targetIndex {
					continue
				}
				fmt.Printf("  %-24s %6.1f (%d splits)\n", def[i].Name, score, f.Importance[i].Count)
			}

			if config.outDir != "" {
				if err := f.Save(config.outDir, def); err != nil {
					fail(3, err)
				}
			}
		},
	}
	cmd.Flags().StringVar(&config.dataPath, "data", "", "path to the CSV training file (required)")
	cmd.Flags().StringVar(&config.target, "target", "", "name of the feature to predict (required)")
	cmd.Flags().IntVar(&config.trees, "trees", 100, "number of trees")
	cmd.Flags().IntVar(&config.workers, "workers", 1, "number of concurrent tree builders")
	cmd.Flags().Uint64Var(&config.seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&config.maxDepth, "max-depth", 10, "maximum tree depth, 0 for unlimited")
	cmd.Flags().IntVar(&config.minLeaf, "min-leaf", 2, "minimum instances per leaf")
	cmd.Flags().BoolVar(&config.oob, "oob", false, "report out-of-bag results instead of training-set results")
	cmd.Flags().StringVar(&config.outDir, "out", "", "directory to save the trained model into")
	return cmd
}
