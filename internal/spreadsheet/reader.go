// Package spreadsheet reads tabular uploads and writes the import template.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for file extensions the reader does not handle.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Table is a parsed sheet. Headers are lower-cased and trimmed; fully blank rows are dropped.
type Table struct {
	Headers []string
	Rows    []Row
}

// Row is one data row. Line is its 1-based line in the source, the header being line 1.
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed cell under column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// HasColumn reports whether the header row contains column.
func (t *Table) HasColumn(column string) bool {
	for _, h := range t.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// Supported reports whether filename has an extension Read can parse.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// Read parses the first sheet of an xlsx/xlsm workbook or a csv file.
func Read(filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return build(records, nil), nil
}

func readCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		records [][]string
		lines   []int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return build(records, lines), nil
}

// build turns raw records into a Table. lines holds the source line of each record; when nil the
// record index is used, as in a worksheet where row n is record n-1.
func build(records [][]string, lines []int) *Table {
	table := &Table{}
	if len(records) == 0 {
		return table
	}
	for _, h := range records[0] {
		table.Headers = append(table.Headers, strings.ToLower(strings.TrimSpace(h)))
	}
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		values := make(map[string]string, len(table.Headers))
		for j, header := range table.Headers {
			if header == "" || j >= len(record) {
				continue
			}
			if _, seen := values[header]; seen {
				continue
			}
			values[header] = record[j]
		}
		line := i + 2
		if lines != nil {
			line = lines[i+1]
		}
		table.Rows = append(table.Rows, Row{Line: line, Values: values})
	}
	return table
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
