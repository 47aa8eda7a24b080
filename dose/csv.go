package dose

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// CSV table files carry one two-column table each with a header row,
// e.g. "depth,percent_dd" or "field_size,factor". Commissioning exports
// commonly arrive in this shape, one file per table.

// LoadTableCSV reads a two-column lookup table from a CSV file.
func LoadTableCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table CSV: %w", err)
	}
	defer file.Close()

	tbl, err := ReadTableCSV(file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return tbl, nil
}

// ReadTableCSV parses a two-column lookup table from CSV data.
func ReadTableCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("table CSV empty or missing header")
	}

	points := make([]Point, 0, len(records)-1)
	for i, record := range records[1:] { // Skip header
		if len(record) < 2 {
			return nil, fmt.Errorf("table CSV row %d: expected 2 columns", i+2)
		}
		key, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("table CSV row %d: invalid key: %w", i+2, err)
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("table CSV row %d: invalid value: %w", i+2, err)
		}
		points = append(points, Point{Key: key, Value: value})
	}
	return NewTable(points)
}

// ReadDepthDoseCSV parses a %DD grid for one energy: header row
// "depth,<fs1>,<fs2>,..." with field sizes as column headings, one depth
// per data row.
func ReadDepthDoseCSV(r io.Reader) (*DepthDoseSet, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read depth dose CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("depth dose CSV empty or missing header")
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("depth dose CSV header: expected depth column plus at least one field size")
	}
	fieldSizes := make([]float64, len(header)-1)
	for j, cell := range header[1:] {
		fs, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("depth dose CSV header column %d: invalid field size: %w", j+2, err)
		}
		fieldSizes[j] = fs
	}

	columns := make(map[float64][]Point, len(fieldSizes))
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("depth dose CSV row %d: expected %d columns", i+2, len(header))
		}
		depth, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("depth dose CSV row %d: invalid depth: %w", i+2, err)
		}
		for j, cell := range record[1:] {
			pdd, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("depth dose CSV row %d: invalid %%DD: %w", i+2, err)
			}
			fs := fieldSizes[j]
			columns[fs] = append(columns[fs], Point{Key: depth, Value: pdd})
		}
	}

	tables := make(map[float64]*Table, len(columns))
	for fs, points := range columns {
		tbl, err := NewTable(points)
		if err != nil {
			return nil, fmt.Errorf("depth dose CSV field size %v: %w", fs, err)
		}
		tables[fs] = tbl
	}
	return NewDepthDoseSet(tables)
}
