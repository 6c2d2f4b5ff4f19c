// =============================================================================
// Docx Mail Merge - Dataset Source
// =============================================================================
//
// Loads the data rows a template is merged with. CSV and XLSX files are
// supported and both end up in the same shape:
//
//   Dataset
//   ├── Columns : header names, trimmed, spaces replaced by underscores
//   └── Rows    : one types.Row per non-empty line, cells as strings,
//                 empty cells as nil
//
// =============================================================================

package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmpty is returned when a file has no header row.
	ErrEmpty = errors.New("dataset is empty")

	// ErrUnsupportedFormat is returned for extensions other than csv/txt/xlsx/xlsm.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// =============================================================================
// DATASET STRUCTURE
// =============================================================================

// Dataset is an ordered table of rows.
type Dataset struct {
	// Columns are the normalized column names in file order.
	Columns []string

	// Rows hold the data, keyed by column name.
	Rows []types.Row

	// Source is the file the dataset was read from.
	Source string
}

// ColumnNames returns the column names.
func (d *Dataset) ColumnNames() []string {
	return d.Columns
}

// Records returns the rows.
func (d *Dataset) Records() []types.Row {
	return d.Rows
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Column returns every value of one column in row order.
func (d *Dataset) Column(name string) []any {
	out := make([]any, 0, len(d.Rows))
	for _, r := range d.Rows {
		out = append(out, r[name])
	}
	return out
}

// Head returns at most n rows.
func (d *Dataset) Head(n int) []types.Row {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}

// RecordMaps returns the rows as plain maps with missing cells as "".
func (d *Dataset) RecordMaps() []map[string]any {
	out := make([]map[string]any, 0, len(d.Rows))
	for _, r := range d.Rows {
		m := make(map[string]any, len(d.Columns))
		for _, c := range d.Columns {
			if v := r[c]; v != nil {
				m[c] = v
			} else {
				m[c] = ""
			}
		}
		out = append(out, m)
	}
	return out
}

// NormalizeColumnName trims a header and replaces spaces by underscores.
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// =============================================================================
// LOADING
// =============================================================================

// Options control how files are read.
type Options struct {
	// CSV holds settings for delimited files.
	CSV CSVOptions

	// Sheet selects the worksheet of an XLSX file. Empty means the first.
	Sheet string
}

// Load reads a dataset, choosing the reader by file extension.
//
// PARAMETERS:
//   - path: The dataset file.
//   - opts: Reader options.
//
// RETURNS:
//   - The dataset.
//   - ErrUnsupportedFormat for unknown extensions, ErrEmpty for files
//     without a header row, or a wrapped read error.
func Load(path string, opts Options) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return LoadCSV(path, opts.CSV)
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// fromRecords builds a dataset from a header line and raw string rows.
func fromRecords(source string, header []string, records [][]string) *Dataset {
	columns := cleanHeaders(header)
	ds := &Dataset{Columns: columns, Source: source, Rows: make([]types.Row, 0, len(records))}

	for _, rec := range records {
		if isRowEmpty(rec) {
			continue
		}
		row := make(types.Row, len(columns))
		for i, col := range columns {
			var cell any
			if i < len(rec) {
				if v := strings.TrimSpace(rec[i]); v != "" {
					cell = v
				}
			}
			row[col] = cell
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

// cleanHeaders normalizes header values. Blank headers become Column_N.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = NormalizeColumnName(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
