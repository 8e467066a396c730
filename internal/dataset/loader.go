// Package dataset ingests historical control-deployment workbooks into the
// domain records the regression consumes. Supported inputs are xlsx (first
// sheet) and csv, laid out one observation period per row: control-count
// columns first, then a safeguard-effect and a maintenance-load column.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cyberrisk/domain/risk"
	"cyberrisk/internal/errors"

	"github.com/xuri/excelize/v2"
)

// History is a parsed control-deployment workbook.
type History struct {
	ControlNames []string
	Matrix       risk.ControlDeploymentMatrix
}

// Loader reads control-history files
type Loader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewLoader creates a loader for the given file, dispatching on extension
func NewLoader(filePath string) *Loader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &Loader{filePath: filePath, fileType: fileType}
}

// Load parses the file into a deployment history.
func (l *Loader) Load() (*History, error) {
	if _, err := os.Stat(l.filePath); os.IsNotExist(err) {
		return nil, errors.DataFormat(fmt.Sprintf("history file not found: %s", l.filePath))
	}

	var rows [][]string
	var err error
	switch l.fileType {
	case "csv":
		rows, err = l.readCSV()
	default:
		rows, err = l.readExcel()
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func (l *Loader) readCSV() ([][]string, error) {
	f, err := os.Open(l.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open csv history file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse csv history file")
	}
	return rows, nil
}

func (l *Loader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(l.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.DataFormat("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to read workbook rows")
	}
	return rows, nil
}

// parseRows converts the header + per-period rows into the column-major
// deployment matrix the regression expects.
func parseRows(rows [][]string) (*History, error) {
	if len(rows) < 2 {
		return nil, errors.DataFormat("history needs a header row and at least one observation row")
	}
	header := rows[0]
	if len(header) < 3 {
		return nil, errors.DataFormat("history needs at least one control column plus effect and load columns")
	}
	types := len(header) - 2
	periods := len(rows) - 1

	history := &History{
		ControlNames: append([]string(nil), header[:types]...),
		Matrix: risk.ControlDeploymentMatrix{
			Counts:          make([][]float64, types),
			SafeguardEffect: make([]float64, periods),
			MaintenanceLoad: make([]float64, periods),
		},
	}
	for j := range history.Matrix.Counts {
		history.Matrix.Counts[j] = make([]float64, periods)
	}

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, errors.DataFormat(fmt.Sprintf(
				"row %d has %d columns, header has %d", i+2, len(row), len(header)))
		}
		for j, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.DataFormat(fmt.Sprintf(
					"row %d column %q: %q is not numeric", i+2, header[j], cell))
			}
			switch {
			case j < types:
				history.Matrix.Counts[j][i] = v
			case j == types:
				history.Matrix.SafeguardEffect[i] = v
			default:
				history.Matrix.MaintenanceLoad[i] = v
			}
		}
	}

	if err := history.Matrix.Validate(); err != nil {
		return nil, errors.Wrap(err, "history file failed validation")
	}
	return history, nil
}
