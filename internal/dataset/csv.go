package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ReadCSV reads labelled samples from CSV.
//
// CSV Format (Kaggle-style):
//
//	label,pixel0,pixel1,...,pixel783
//	5,0,0,12,...,0
//	0,0,0,0,...,0
//
// A header row is skipped when its first field is not an integer. Every
// row must have the same number of fields.
func ReadCSV(r io.Reader, maxSamples int) (*Set, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) > 0 {
		if _, err := strconv.Atoi(records[0][0]); err != nil {
			records = records[1:]
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV contains no samples")
	}
	if maxSamples > 0 && len(records) > maxSamples {
		records = records[:maxSamples]
	}

	width := len(records[0])
	if width < 2 {
		return nil, fmt.Errorf("CSV rows need a label and at least one feature, got %d fields", width)
	}

	set := &Set{
		Inputs: make([][]float64, len(records)),
		Labels: make([]int, len(records)),
	}
	for i, record := range records {
		if len(record) != width {
			return nil, fmt.Errorf("invalid record length at row %d: got %d, want %d", i+1, len(record), width)
		}
		label, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid label at row %d: %w", i+1, err)
		}
		features := make([]float64, width-1)
		for j := range features {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value at row %d, column %d: %w", i+1, j+2, err)
			}
			features[j] = v
		}
		set.Inputs[i] = features
		set.Labels[i] = label
	}
	return set, nil
}

// LoadCSV reads labelled samples from a CSV file. See ReadCSV.
func LoadCSV(path string, maxSamples int) (*Set, error) {
	return readFile(path, func(r io.Reader) (*Set, error) {
		return ReadCSV(r, maxSamples)
	})
}
