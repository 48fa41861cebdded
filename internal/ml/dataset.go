package ml

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/studypulse/performance-hub/internal/domain/metrics"
	"github.com/studypulse/performance-hub/internal/domain/shared"
)

// LabelColumn is the ground-truth column of the historical dataset.
const LabelColumn = "Performance_Label"

// Boolean-valued dataset columns, encoded as "Yes"/"No" text on disk.
var booleanColumns = map[string]bool{
	"physical_activity": true,
	"academic_goal":     true,
}

// Dataset is the historical training data: one feature row per student in
// metrics.FeatureNames order, plus the ground-truth label strings.
type Dataset struct {
	Features [][]float64
	Labels   []string
}

// Rows returns the number of records.
func (d *Dataset) Rows() int {
	return len(d.Labels)
}

// LoadCSV reads the historical dataset from a CSV file. The header must
// contain every column in metrics.FeatureNames plus LabelColumn; extra
// columns are ignored. Boolean columns are coerced from "Yes"/"No" (1/0
// also accepted); any other category value fails the load - the dataset is
// server-owned, so unrecognized values are treated as corruption rather
// than silently mapped to false. Numeric columns accept plain numbers or
// free-text durations.
//
// Fails with a DatasetError kind when the file is unreadable, the label
// column or a feature column is missing, the dataset is empty, or any cell
// cannot be coerced.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, shared.WrapError("ml", "LoadCSV", shared.ErrDataset,
			fmt.Sprintf("cannot open dataset %s", path), err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses a dataset from any reader. Split out from LoadCSV so tests
// can feed in-memory CSV data.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, shared.WrapError("ml", "ReadCSV", shared.ErrDataset,
			"cannot read dataset header", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	labelIdx, ok := colIndex[LabelColumn]
	if !ok {
		return nil, shared.NewDomainError("ml", "ReadCSV", shared.ErrDataset,
			fmt.Sprintf("dataset is missing the %s column", LabelColumn))
	}

	featureIdx := make([]int, len(metrics.FeatureNames))
	for i, name := range metrics.FeatureNames {
		idx, ok := colIndex[name]
		if !ok {
			return nil, shared.NewDomainError("ml", "ReadCSV", shared.ErrDataset,
				fmt.Sprintf("dataset is missing the %s feature column", name))
		}
		featureIdx[i] = idx
	}

	ds := &Dataset{}
	row := 1 // header was row 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, shared.WrapError("ml", "ReadCSV", shared.ErrDataset,
				fmt.Sprintf("malformed CSV at row %d", row), err)
		}

		features := make([]float64, len(featureIdx))
		for i, idx := range featureIdx {
			name := metrics.FeatureNames[i]
			cell := strings.TrimSpace(record[idx])

			var v float64
			var cellErr error
			if booleanColumns[name] {
				v, cellErr = coerceBooleanCell(cell)
			} else {
				v, cellErr = metrics.ParseMinutes(cell)
				if cellErr == nil && v < 0 {
					cellErr = fmt.Errorf("negative value %q", cell)
				}
			}
			if cellErr != nil {
				return nil, shared.WrapError("ml", "ReadCSV", shared.ErrDataset,
					fmt.Sprintf("row %d, column %s", row, name), cellErr)
			}
			features[i] = v
		}

		label := strings.TrimSpace(record[labelIdx])
		if label == "" {
			return nil, shared.NewDomainError("ml", "ReadCSV", shared.ErrDataset,
				fmt.Sprintf("row %d has an empty %s", row, LabelColumn))
		}

		ds.Features = append(ds.Features, features)
		ds.Labels = append(ds.Labels, label)
	}

	if ds.Rows() == 0 {
		return nil, shared.NewDomainError("ml", "ReadCSV", shared.ErrDataset,
			"dataset contains no records")
	}

	return ds, nil
}

// coerceBooleanCell maps a training-file category cell to 0/1. Strict:
// unlike end-user form input, an unrecognized value here is a data fault.
func coerceBooleanCell(cell string) (float64, error) {
	switch strings.ToLower(cell) {
	case "yes", "1":
		return 1, nil
	case "no", "0":
		return 0, nil
	default:
		return 0, fmt.Errorf("unrecognized category value %q (want Yes/No)", cell)
	}
}
