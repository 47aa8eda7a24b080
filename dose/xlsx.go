package dose

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSX beam dataset workbooks mirror the YAML schema, one sheet per
// table: "output_factors" and "wedge_factors" are two-column sheets with
// a header row; each "pdd_<energy>" sheet is a %DD grid with depths down
// the first column and field sizes across the header row. An optional
// "unit" sheet carries "sad" in A1/B1.

const pddSheetPrefix = "pdd_"

// LoadBeamDataXLSX reads a beam dataset workbook from disk.
func LoadBeamDataXLSX(path string) (*BeamData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open beam data workbook %q: %w", path, err)
	}
	defer f.Close()
	return beamDataFromWorkbook(f)
}

// ReadBeamDataXLSX reads a beam dataset workbook from a stream, e.g. an
// uploaded file.
func ReadBeamDataXLSX(r io.Reader) (*BeamData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open beam data workbook: %w", err)
	}
	defer f.Close()
	return beamDataFromWorkbook(f)
}

func beamDataFromWorkbook(f *excelize.File) (*BeamData, error) {
	data := &BeamData{
		SAD: DefaultSAD,
		PDD: make(map[Energy]*DepthDoseSet),
	}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}

		switch {
		case sheet == "output_factors":
			if data.OutputFactors, err = tableFromRows(rows); err != nil {
				return nil, fmt.Errorf("sheet %q: %w", sheet, err)
			}
		case sheet == "wedge_factors":
			if data.WedgeFactors, err = tableFromRows(rows); err != nil {
				return nil, fmt.Errorf("sheet %q: %w", sheet, err)
			}
		case sheet == "unit":
			if err := applyUnitRows(data, rows); err != nil {
				return nil, fmt.Errorf("sheet %q: %w", sheet, err)
			}
		case strings.HasPrefix(sheet, pddSheetPrefix):
			energy := Energy(strings.TrimPrefix(sheet, pddSheetPrefix))
			set, err := depthDoseSetFromRows(rows)
			if err != nil {
				return nil, fmt.Errorf("sheet %q: %w", sheet, err)
			}
			data.PDD[energy] = set
		}
		// Unknown sheets are ignored so commissioning workbooks can carry
		// notes and charts alongside the data sheets.
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

func tableFromRows(rows [][]string) (*Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("empty sheet")
	}
	var points []Point
	for i := 1; i < len(rows); i++ { // skip header
		row := rows[i]
		if len(row) < 2 || (row[0] == "" && row[1] == "") {
			continue // trailing blank rows are common in hand-edited sheets
		}
		key, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid key %q", i+1, row[0])
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid value %q", i+1, row[1])
		}
		points = append(points, Point{Key: key, Value: value})
	}
	return NewTable(points)
}

func depthDoseSetFromRows(rows [][]string) (*DepthDoseSet, error) {
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("expected a depth column plus at least one field size column")
	}

	header := rows[0]
	fieldSizes := make([]float64, len(header)-1)
	for j := 1; j < len(header); j++ {
		fs, err := strconv.ParseFloat(strings.TrimSpace(header[j]), 64)
		if err != nil {
			return nil, fmt.Errorf("header column %d: invalid field size %q", j+1, header[j])
		}
		fieldSizes[j-1] = fs
	}

	columns := make(map[float64][]Point, len(fieldSizes))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || row[0] == "" {
			continue
		}
		depth, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid depth %q", i+1, row[0])
		}
		for j := 1; j < len(row) && j <= len(fieldSizes); j++ {
			pdd, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: invalid %%DD %q", i+1, j+1, row[j])
			}
			columns[fieldSizes[j-1]] = append(columns[fieldSizes[j-1]], Point{Key: depth, Value: pdd})
		}
	}

	tables := make(map[float64]*Table, len(columns))
	for fs, points := range columns {
		tbl, err := NewTable(points)
		if err != nil {
			return nil, fmt.Errorf("field size %v: %w", fs, err)
		}
		tables[fs] = tbl
	}
	return NewDepthDoseSet(tables)
}

func applyUnitRows(data *BeamData, rows [][]string) error {
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(row[0])) {
		case "sad":
			sad, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
			if err != nil {
				return fmt.Errorf("row %d: invalid sad %q", i+1, row[1])
			}
			data.SAD = sad
		}
	}
	return nil
}
