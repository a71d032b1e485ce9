package data

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// LoadCSV reads a dataset from a CSV file. See ReadCSV.
func LoadCSV(path string, targetCols []int, hasHeader bool) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer f.Close()
	return ReadCSV(f, targetCols, hasHeader)
}

// ReadCSV parses numeric CSV records into examples. The columns listed in
// targetCols form the target, in that order; every other column is an input,
// in file order. hasHeader skips the first record.
func ReadCSV(r io.Reader, targetCols []int, hasHeader bool) (Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if hasHeader && len(records) > 0 {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, errors.New("csv has no data rows")
	}

	cols := len(records[0])
	isTarget := make(map[int]bool, len(targetCols))
	for _, c := range targetCols {
		if c < 0 || c >= cols {
			return nil, errors.Errorf("target column %d out of range [0, %d)", c, cols)
		}
		if isTarget[c] {
			return nil, errors.Errorf("target column %d listed twice", c)
		}
		isTarget[c] = true
	}

	ds := make(Dataset, len(records))
	for i, rec := range records {
		// csv.Reader already rejects ragged rows
		row := make([]float64, len(rec))
		for j, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d, column %d", i, j)
			}
			row[j] = v
		}

		ex := Example{
			Input:  make([]float64, 0, cols-len(targetCols)),
			Target: make([]float64, 0, len(targetCols)),
		}
		for j, v := range row {
			if !isTarget[j] {
				ex.Input = append(ex.Input, v)
			}
		}
		for _, c := range targetCols {
			ex.Target = append(ex.Target, row[c])
		}
		ds[i] = ex
	}
	return ds, nil
}
