package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/grove-ml/grove/pkg/errors"
	"github.com/grove-ml/grove/pkg/log"
)

// Column type tokens accepted in the definition row.
const (
	defTokenContinuous = "C"
	defTokenDiscrete   = "D"
	defTokenIgnore     = "I"
	defTokenPreserve   = "P"
)

func isMissingToken(v string) bool {
	return v == "" || v == "?" || v == "NA"
}

// LoadCSV reads a dataset whose first row defines each column as
// "Name:C" (continuous), "Name:D" (discrete), or "Name:I" (ignored), with an
// optional ":P" suffix to preserve missing values. Missing continuous values
// impute the column mean (or an out-of-range sentinel with :P); missing
// discrete values impute the mode (or the reserved unknown category with :P).
func LoadCSV(path string) (Definition, Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	def, ds, err := loadCSV(f, nil)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading %s", path)
	}

	logger := log.GetLoggerWithName("dataset")
	logger.Info("loaded dataset",
		log.OperationKey, "load",
		log.SamplesKey, len(ds),
		log.FeaturesKey, len(def),
		"path", path)

	return def, ds, nil
}

// LoadCSVUsingDefinition reads a data file with the same column layout as a
// previously loaded definition, mapping category names through the training
// vocabulary. Categories unseen in training become the unknown category;
// missing values impute using the training statistics.
func LoadCSVUsingDefinition(path string, def Definition) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	_, ds, err := loadCSV(f, def)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return ds, nil
}

type columnDef struct {
	name     string
	ftype    FeatureType
	preserve bool
	ignored  bool
}

func parseDefinitionRow(row []string) ([]columnDef, error) {
	cols := make([]columnDef, 0, len(row))
	for i, cell := range row {
		parts := strings.Split(strings.TrimSpace(cell), ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, errors.Newf("bad definition cell %d: %q (want Name:C, Name:D, or Name:I)", i, cell)
		}

		cd := columnDef{name: parts[0]}
		switch parts[1] {
		case defTokenContinuous:
			cd.ftype = Continuous
		case defTokenDiscrete:
			cd.ftype = Discrete
		case defTokenIgnore:
			cd.ignored = true
		default:
			return nil, errors.Newf("bad column type %q in definition cell %d", parts[1], i)
		}

		if len(parts) == 3 {
			if parts[2] != defTokenPreserve {
				return nil, errors.Newf("bad definition option %q in cell %d", parts[2], i)
			}
			cd.preserve = true
		}

		cols = append(cols, cd)
	}
	return cols, nil
}

func loadCSV(r io.Reader, trained Definition) (Definition, Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading definition row")
	}

	cols, err := parseDefinitionRow(header)
	if err != nil {
		return nil, nil, err
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "reading data row")
		}
		if len(record) != len(cols) {
			return nil, nil, errors.Newf("row %d has %d columns, definition has %d", len(rows)+2, len(record), len(cols))
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("no data rows")
	}

	kept := make([]int, 0, len(cols))
	for i, cd := range cols {
		if !cd.ignored {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return nil, nil, errors.New("all columns ignored")
	}

	var def Definition
	if trained != nil {
		if len(trained) != len(kept) {
			return nil, nil, errors.Newf("definition has %d features, file provides %d", len(trained), len(kept))
		}
		for fi, ci := range kept {
			if trained[fi].Name != cols[ci].name || trained[fi].Type != cols[ci].ftype {
				return nil, nil, errors.Newf("feature %d mismatch: definition has %s (%s), file has %s",
					fi, trained[fi].Name, trained[fi].Type, cols[ci].name)
			}
		}
		def = trained
	} else {
		def = buildDefinition(cols, kept, rows)
	}

	ds := make(Dataset, 0, len(rows))
	for _, record := range rows {
		inst := make(Instance, len(kept))
		for fi, ci := range kept {
			fd := def[fi]
			cell := strings.TrimSpace(record[ci])

			if isMissingToken(cell) {
				inst[fi] = missingValue(fd)
				continue
			}

			switch fd.Type {
			case Continuous:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, nil, errors.Wrapf(err, "parsing continuous value %q for feature %s", cell, fd.Name)
				}
				inst[fi] = ContinuousValue(v)
			case Discrete:
				inst[fi] = CategoryValue(fd.CategoryIndexOf(cell))
			}
		}
		ds = append(ds, &inst)
	}

	return def, ds, nil
}

func missingValue(fd *FeatureDesc) FeatureValue {
	if fd.Type == Continuous {
		if fd.PreserveMissing {
			return ContinuousValue(MissingContinuousValue)
		}
		return ContinuousValue(fd.Mean)
	}
	if fd.PreserveMissing {
		return CategoryValue(UnknownCategoryIndex)
	}
	return CategoryValue(fd.ModeIndex)
}

// buildDefinition scans the raw rows once to establish per-column statistics
// and discrete vocabularies (first-seen order, index 0 reserved).
func buildDefinition(cols []columnDef, kept []int, rows [][]string) Definition {
	def := make(Definition, 0, len(kept))

	for _, ci := range kept {
		cd := cols[ci]
		fd := &FeatureDesc{
			Name:            cd.name,
			Type:            cd.ftype,
			PreserveMissing: cd.preserve,
		}

		switch cd.ftype {
		case Continuous:
			values := make([]float64, 0, len(rows))
			for _, record := range rows {
				cell := strings.TrimSpace(record[ci])
				if isMissingToken(cell) {
					fd.Missing++
					continue
				}
				if v, err := strconv.ParseFloat(cell, 64); err == nil {
					values = append(values, v)
				} else {
					fd.Missing++
				}
			}
			if len(values) > 0 {
				fd.Mean = stat.Mean(values, nil)
			}
			if len(values) > 1 {
				fd.SD = stat.StdDev(values, nil)
			}

		case Discrete:
			fd.Categories = []string{UnknownCategory}
			fd.CategoryCounts = []int{0}
			fd.rebuildCategoryIndex()
			for _, record := range rows {
				cell := strings.TrimSpace(record[ci])
				if isMissingToken(cell) {
					fd.Missing++
					continue
				}
				idx, ok := fd.categoryIndex[cell]
				if !ok {
					idx = len(fd.Categories)
					fd.Categories = append(fd.Categories, cell)
					fd.CategoryCounts = append(fd.CategoryCounts, 0)
					fd.categoryIndex[cell] = idx
				}
				fd.CategoryCounts[idx]++
			}
			mode, modeCount := UnknownCategoryIndex, 0
			for idx := 1; idx < len(fd.CategoryCounts); idx++ {
				if fd.CategoryCounts[idx] > modeCount {
					mode, modeCount = idx, fd.CategoryCounts[idx]
				}
			}
			fd.ModeIndex = mode
		}

		def = append(def, fd)
	}

	return def
}
