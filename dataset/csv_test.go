package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, `Sepal:C,Color:D,Skip:I,Class:D
5.0,red,x,a
6.0,blue,x,b
7.0,red,x,a
8.0,green,x,b
`)

	def, ds, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, def, 3)
	require.Len(t, ds, 4)

	require.Equal(t, "Sepal", def[0].Name)
	require.Equal(t, Continuous, def[0].Type)
	require.InDelta(t, 6.5, def[0].Mean, 1e-12)
	require.InDelta(t, 1.2909944487358056, def[0].SD, 1e-12, "sample standard deviation")

	color := def[1]
	require.Equal(t, Discrete, color.Type)
	require.Equal(t, []string{UnknownCategory, "red", "blue", "green"}, color.Categories)
	require.Equal(t, 1, color.ModeIndex, "red is the mode")

	// First instance: red has first-seen index 1.
	require.Equal(t, 1, (*ds[0])[1].Category)
	require.Equal(t, 5.0, (*ds[0])[0].Continuous)
}

func TestLoadCSVMissingValues(t *testing.T) {
	path := writeTempCSV(t, `A:C,B:D,P:C:P,Q:D:P
1.0,x,1.0,m
?,x,NA,?
3.0,,3.0,n
`)

	def, ds, err := LoadCSV(path)
	require.NoError(t, err)

	// Mean imputation for A: mean of 1 and 3.
	require.InDelta(t, 2.0, (*ds[1])[0].Continuous, 1e-12)
	require.Equal(t, 1, def[0].Missing)

	// Mode imputation for B.
	require.Equal(t, def[1].ModeIndex, (*ds[2])[1].Category)

	// Preserved missing: sentinel for continuous, unknown for discrete.
	require.Equal(t, MissingContinuousValue, (*ds[1])[2].Continuous)
	require.Equal(t, UnknownCategoryIndex, (*ds[1])[3].Category)
}

func TestLoadCSVUsingDefinition(t *testing.T) {
	trainPath := writeTempCSV(t, `A:C,Class:D
1.0,yes
2.0,no
`)
	def, _, err := LoadCSV(trainPath)
	require.NoError(t, err)

	testPath := writeTempCSV(t, `A:C,Class:D
3.0,no
4.0,maybe
`)
	ds, err := LoadCSVUsingDefinition(testPath, def)
	require.NoError(t, err)
	require.Len(t, ds, 2)

	// "no" maps through the training vocabulary, "maybe" is unknown.
	require.Equal(t, def[1].CategoryIndexOf("no"), (*ds[0])[1].Category)
	require.Equal(t, UnknownCategoryIndex, (*ds[1])[1].Category)
}

func TestLoadCSVRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"no data rows", "A:C,B:D\n"},
		{"bad type token", "A:X\n1.0\n"},
		{"ragged row", "A:C,B:D\n1.0\n"},
		{"all ignored", "A:I,B:I\nx,y\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadCSV(writeTempCSV(t, tt.contents))
			require.Error(t, err)
		})
	}
}

func TestDefinitionRoundTrip(t *testing.T) {
	path := writeTempCSV(t, `A:C,Class:D
1.0,yes
2.0,no
`)
	def, _, err := LoadCSV(path)
	require.NoError(t, err)

	defPath := filepath.Join(t.TempDir(), "definition.json")
	require.NoError(t, WriteDefinition(defPath, def))

	restored, err := ReadDefinition(defPath)
	require.NoError(t, err)
	require.Len(t, restored, len(def))
	require.Equal(t, def[1].Categories, restored[1].Categories)
	require.Equal(t, def[1].CategoryIndexOf("no"), restored[1].CategoryIndexOf("no"))
	require.Equal(t, def[0].Mean, restored[0].Mean)
}
