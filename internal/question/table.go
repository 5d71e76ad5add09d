package question

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrEmptySheet        = errors.New("spreadsheet has no header row")
)

// Table is a sheet of cells with a header row, every cell is kept as text.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

func NewTable(header []string, rows [][]string) Table {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		// the first column wins if a header is repeated
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}
	return Table{Header: header, Rows: rows, index: index}
}

// Column returns the index of the column with the given header.
func (t Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// cell returns the trimmed text at col, rows shorter than the header read as blank.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ReadFile reads the first sheet of an .xlsx workbook or a .csv file.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(f)
	case ".csv":
		return ReadCSV(f)
	default:
		return Table{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrEmptySheet
	}
	// raw values, a number format must not change a score or an option
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return tableFromRows(rows)
}

func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	return tableFromRows(rows)
}

func tableFromRows(rows [][]string) (Table, error) {
	if len(rows) == 0 {
		return Table{}, ErrEmptySheet
	}
	return NewTable(rows[0], rows[1:]), nil
}
