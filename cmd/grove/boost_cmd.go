package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grove-ml/grove/boost"
	"github.com/grove-ml/grove/results"
)

type boostCmdConfig struct {
	dataPath  string
	target    string
	trees     int
	rate      float64
	subsample float64
	maxDepth  int
	minLeaf   int
	seed      uint64
	outDir    string
}

func boostCmd() *cobra.Command {
	config := &boostCmdConfig{}
	cmd := &cobra.Command{
		Use:   "boost",
		Short: "Train a gradient-boosted ensemble",
		Long:  `Train a gradient-boosted sequence of regression trees on a CSV training file; the target feature must be continuous`,
		Run: func(cmd *cobra.Command, args []string) {
			def, ds, targetIndex, err := loadTrainingData(config.dataPath, config.target)
			if err != nil {
				fail(1, err)
			}
			e, err := boost.Train(def, ds, boost.Config{
				TargetIndex:      targetIndex,
				Trees:            config.trees,
				LearningRate:     config.rate,
				Subsample:        config.subsample,
				MaxDepth:         config.maxDepth,
				MinLeafInstances: config.minLeaf,
				Seed:             config.seed,
			})
			if err != nil {
				fail(2, err)
			}

			res := results.NewRegression(def, targetIndex)
			for _, inst := range ds {
				res.Collect(e.Evaluate(*inst), inst)
			}
			fmt.Println("training-set results:")
			fmt.Print(res.Summary())

			if config.outDir != "" {
				if err := e.Save(config.outDir, def); err != nil {
					fail(3, err)
				}
			}
		},
	}
	cmd.Flags().StringVar(&config.dataPath, "data", "", "path to the CSV training file (required)")
	cmd.Flags().StringVar(&config.target, "target", "", "name of the continuous feature to predict (required)")
	cmd.Flags().IntVar(&config.trees, "trees", 50, "number of boosting iterations")
	cmd.Flags().Float64Var(&config.rate, "rate", 0.1, "learning rate in (0, 1]")
	cmd.Flags().Float64Var(&config.subsample, "subsample", 0.5, "per-iteration row sampling probability")
	cmd.Flags().IntVar(&config.maxDepth, "max-depth", 4, "maximum tree depth per iteration")
	cmd.Flags().IntVar(&config.minLeaf, "min-leaf", 2, "minimum instances per leaf")
	cmd.Flags().Uint64Var(&config.seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&config.outDir, "out", "", "directory to save the trained model into")
	return cmd
}
