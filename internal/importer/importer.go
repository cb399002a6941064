// Package importer reads vocabulary spreadsheets (.xlsx or .csv) into word
// rows ready for a bulk insert.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxRows bounds a single import.
const MaxRows = 5000

var ErrUnsupportedFormat = errors.New("unsupported file format: expected .xlsx or .csv")

// Columns maps each field to a zero-based column index; -1 means absent.
type Columns struct {
	Hebrew          int
	Transliteration int
	French          int
	Difficulty      int
}

// DefaultColumns is used when the first row is not a recognizable header:
// A hebrew, B transliteration, C french, D difficulty.
func DefaultColumns() Columns {
	return Columns{Hebrew: 0, Transliteration: 1, French: 2, Difficulty: 3}
}

// rawRow is one raw spreadsheet row and the 1-based line it came from.
type rawRow struct {
	line  int
	cells []string
}

type Row struct {
	Line            int
	Hebrew          string
	Transliteration string
	French          string
	Difficulty      int
}

type Result struct {
	Rows      []Row
	Processed int
	Skipped   int
	Errors    []string
}

// Supported reports whether the file name has an importable extension.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// Parse reads every data row of the file. Row-level problems are collected
// in Result.Errors; only unreadable files return an error.
func Parse(r io.Reader, filename string) (*Result, error) {
	var records []rawRow
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		records, err = readExcel(r)
	case ".csv":
		records, err = readCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return parseRecords(records), nil
}

func readExcel(r io.Reader) ([]rawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	// GetRows keeps empty rows, so the index is the sheet row.
	records := make([]rawRow, len(rows))
	for i, cells := range rows {
		records[i] = rawRow{line: i + 1, cells: cells}
	}
	return records, nil
}

func readCSV(r io.Reader) ([]rawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	// The reader skips blank lines, so each row keeps its physical line.
	var records []rawRow
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, rawRow{line: line, cells: cells})
	}

	// Spreadsheet exports often start with a UTF-8 BOM.
	if len(records) > 0 && len(records[0].cells) > 0 {
		records[0].cells[0] = strings.TrimPrefix(records[0].cells[0], "\ufeff")
	}
	return records, nil
}

func parseRecords(records []rawRow) *Result {
	result := &Result{Rows: make([]Row, 0, len(records)), Errors: make([]string, 0)}
	if len(records) == 0 {
		return result
	}

	cols, isHeader := detectHeader(records[0].cells)
	start := 0
	if isHeader {
		start = 1
	}

	seen := make(map[string]bool)
	for _, rec := range records[start:] {
		line := rec.line
		if blank(rec.cells) {
			continue
		}
		result.Processed++

		if len(result.Rows) >= MaxRows {
			result.Skipped++
			continue
		}

		row, err := parseRow(rec.cells, cols)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}
		row.Line = line

		key := strings.ToLower(row.Hebrew) + "\x00" + strings.ToLower(row.French)
		if seen[key] {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: duplicate of an earlier row", line))
			continue
		}
		seen[key] = true
		result.Rows = append(result.Rows, row)
	}
	return result
}

var headerNames = map[string]string{
	"hebrew":           "hebrew",
	"hébreu":           "hebrew",
	"hebreu":           "hebrew",
	"עברית":            "hebrew",
	"transliteration":  "transliteration",
	"translittération": "transliteration",
	"phonetique":       "transliteration",
	"phonétique":       "transliteration",
	"french":           "french",
	"français":         "french",
	"francais":         "french",
	"traduction":       "french",
	"difficulty":       "difficulty",
	"difficulté":       "difficulty",
	"difficulte":       "difficulty",
	"niveau":           "difficulty",
}

// detectHeader recognizes a header row naming at least the hebrew and french
// columns.
func detectHeader(record []string) (Columns, bool) {
	cols := Columns{Hebrew: -1, Transliteration: -1, French: -1, Difficulty: -1}
	for i, cell := range record {
		switch headerNames[strings.ToLower(strings.TrimSpace(cell))] {
		case "hebrew":
			cols.Hebrew = i
		case "transliteration":
			cols.Transliteration = i
		case "french":
			cols.French = i
		case "difficulty":
			cols.Difficulty = i
		}
	}
	if cols.Hebrew < 0 || cols.French < 0 {
		return DefaultColumns(), false
	}
	return cols, true
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(record []string, cols Columns) (Row, error) {
	row := Row{
		Hebrew:          cell(record, cols.Hebrew),
		Transliteration: cell(record, cols.Transliteration),
		French:          cell(record, cols.French),
	}
	if row.Hebrew == "" {
		return row, fmt.Errorf("hebrew cannot be empty")
	}
	if row.French == "" {
		return row, fmt.Errorf("french cannot be empty")
	}

	difficulty, err := parseDifficulty(cell(record, cols.Difficulty))
	if err != nil {
		return row, err
	}
	row.Difficulty = difficulty
	return row, nil
}

func parseDifficulty(s string) (int, error) {
	switch strings.ToLower(s) {
	case "", "facile", "easy":
		return 1, nil
	case "moyen", "medium":
		return 2, nil
	case "difficile", "hard":
		return 3, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 3 {
		return 0, fmt.Errorf("difficulty %q must be 1, 2 or 3", s)
	}
	return n, nil
}
