package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIParserCommands(t *testing.T) {
	root := cliParser()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	require.Subset(t, names, []string{"tree", "forest", "boost", "predict"})
	require.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestCommandFlags(t *testing.T) {
	for _, tc := range []struct {
		cmdName string
		flags   []string
	}{
		{"tree", []string{"data", "target", "max-depth", "min-leaf", "out"}},
		{"forest", []string{"data", "target", "trees", "workers", "seed", "oob", "out"}},
		{"boost", []string{"data", "target", "trees", "rate", "subsample", "out"}},
		{"predict", []string{"model", "data"}},
	} {
		cmd, _, err := cliParser().Find([]string{tc.cmdName})
		require.NoError(t, err)
		for _, flag := range tc.flags {
			require.NotNilf(t, cmd.Flags().Lookup(flag), "%s is missing flag %s", tc.cmdName, flag)
		}
	}
}
