// =============================================================================
// Docx Mail Merge - XLSX Reader
// =============================================================================
//
// The first row of the selected sheet holds the column names. Cells are read
// as their stored values, not as the spreadsheet displays them, so a grouped
// amount like "1,234.50" arrives as "1234.5".
//
// CELL CONVERSION:
//   - date formatted serials -> "2006-01-02 15:04:05"
//   - time formatted serials -> "15:04:05"
//   - booleans               -> "TRUE" / "FALSE"
//   - everything else        -> the stored text
//
// =============================================================================

package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Layouts used for converted date and time cells.
const (
	DateTimeLayout = "2006-01-02 15:04:05"
	TimeLayout     = "15:04:05"
)

// cellKind is the conversion applied to a numeric cell.
type cellKind int

const (
	kindPlain cellKind = iota
	kindDate
	kindTime
)

// Built-in number formats holding a date part, or only a time part. 27-36
// and 50-58 are the East Asian language date formats.
var (
	builtInDateFormats = map[int]bool{14: true, 15: true, 16: true, 17: true, 22: true}
	builtInTimeFormats = map[int]bool{18: true, 19: true, 20: true, 21: true, 45: true, 46: true, 47: true}
)

// Quoted literals, escaped characters and [..] sections carry no date tokens.
var formatLiterals = regexp.MustCompile(`"[^"]*"|\\.|\[[^\]]*\]`)

// LoadXLSX reads one sheet of an XLSX workbook.
//
// PARAMETERS:
//   - path: The workbook.
//   - sheet: The sheet name, or "" for the first sheet.
//
// RETURNS:
//   - The dataset.
//   - ErrEmpty when the sheet has no rows, or a wrapped read error.
func LoadXLSX(path, sheet string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	ds, err := readWorkbook(f, sheet)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	return ds, nil
}

func readWorkbook(f *excelize.File, sheet string) (*Dataset, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	conv := newCellConverter(f, sheet)
	for r := 1; r < len(rows); r++ {
		for c, value := range rows[r] {
			if strings.TrimSpace(value) == "" {
				continue
			}
			rows[r][c] = conv.convert(c+1, r+1, value)
		}
	}

	return fromRecords("", rows[0], rows[1:]), nil
}

// =============================================================================
// CELL CONVERSION
// =============================================================================

// cellConverter turns raw cell values into text the coercion layer
// understands. Style lookups are cached per style index.
type cellConverter struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	kinds    map[int]cellKind
}

func newCellConverter(f *excelize.File, sheet string) *cellConverter {
	conv := &cellConverter{f: f, sheet: sheet, kinds: make(map[int]cellKind)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		conv.date1904 = *props.Date1904
	}
	return conv
}

func (c *cellConverter) convert(col, row int, value string) string {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return value
	}

	serial, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}

	cellType, err := c.f.GetCellType(c.sheet, cell)
	if err != nil {
		return value
	}
	switch cellType {
	case excelize.CellTypeBool:
		if value == "1" {
			return "TRUE"
		}
		return "FALSE"
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return value
	}

	styleID, err := c.f.GetCellStyle(c.sheet, cell)
	if err != nil || styleID == 0 {
		return value
	}

	switch c.kindOf(styleID) {
	case kindDate:
		if t, err := excelize.ExcelDateToTime(serial, c.date1904); err == nil {
			return t.Format(DateTimeLayout)
		}
	case kindTime:
		if t, err := excelize.ExcelDateToTime(serial, c.date1904); err == nil {
			return t.Format(TimeLayout)
		}
	}
	return value
}

func (c *cellConverter) kindOf(styleID int) cellKind {
	if kind, ok := c.kinds[styleID]; ok {
		return kind
	}

	kind := kindPlain
	if style, err := c.f.GetStyle(styleID); err == nil {
		kind = formatKind(style.NumFmt, style.CustomNumFmt)
	}
	c.kinds[styleID] = kind
	return kind
}

// formatKind classifies a number format by its built-in index or custom
// format code.
func formatKind(numFmt int, custom *string) cellKind {
	if custom != nil && *custom != "" {
		return customFormatKind(*custom)
	}
	switch {
	case builtInDateFormats[numFmt], numFmt >= 27 && numFmt <= 36, numFmt >= 50 && numFmt <= 58:
		return kindDate
	case builtInTimeFormats[numFmt]:
		return kindTime
	}
	return kindPlain
}

// customFormatKind inspects the first section of a custom format code.
func customFormatKind(code string) cellKind {
	section := strings.SplitN(code, ";", 2)[0]
	section = strings.ToLower(formatLiterals.ReplaceAllString(section, ""))

	if strings.ContainsAny(section, "yd") || strings.Contains(section, "mmm") {
		return kindDate
	}
	if strings.ContainsAny(section, "hs") {
		return kindTime
	}
	return kindPlain
}
