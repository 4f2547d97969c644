package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/pkg/log"
)

type rootCmdConfig struct {
	logLevel string
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:   "grove",
		Short: "grove trains and applies decision-tree models",
		Long:  `Train decision trees, random forests and gradient-boosted ensembles from CSV data, and use saved models to make predictions`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLevel(log.ParseLevel(config.logLevel))
		},
	}
	rootCmd.PersistentFlags().StringVar(&config.logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")
	rootCmd.AddCommand(treeCmd(), forestCmd(), boostCmd(), predictCmd())
	return rootCmd
}

// loadTrainingData reads a CSV training file and resolves the target feature
// by name.
func loadTrainingData(dataPath, target string) (dataset.Definition, dataset.Dataset, int, error) {
	if dataPath == "" {
		return nil, nil, 0, fmt.Errorf("required data flag was not set")
	}
	if target == "" {
		return nil, nil, 0, fmt.Errorf("required target flag was not set")
	}
	def, ds, err := dataset.LoadCSV(dataPath)
	if err != nil {
		return nil, nil, 0, err
	}
	targetIndex, err := def.IndexOfFeatureNamed(target)
	if err != nil {
		return nil, nil, 0, err
	}
	return def, ds, targetIndex, nil
}

func fail(code int, err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}
