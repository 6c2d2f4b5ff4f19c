// =============================================================================
// Docx Mail Merge - CSV Reader
// =============================================================================
//
// Reads delimited text exports. Spreadsheet programs write CSV in the system
// code page, so the input is decoded to UTF-8 first.
//
// SUPPORTED ENCODINGS:
//   - UTF-8 (a leading byte order mark is dropped)
//   - UTF-16 (byte order mark required)
//   - any WHATWG label: windows-1252, iso-8859-1, iso-8859-15, ...
//
// =============================================================================

package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVOptions contains settings for parsing CSV files.
type CSVOptions struct {
	// Delimiter separates fields. Accepts a character or an alias
	// ("tab", "pipe", "semicolon"). Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the file. Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// HeaderRow is the 1-based row holding column names. Default: 1
	HeaderRow int `yaml:"header_row"`

	// DataStartRow is the 1-based row where data begins.
	// Default: HeaderRow + 1
	DataStartRow int `yaml:"data_start_row"`
}

// LoadCSV reads a CSV file.
func LoadCSV(path string, opts CSVOptions) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ds, err := ReadCSV(file, opts)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	return ds, nil
}

// ReadCSV reads CSV data from r.
func ReadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(bufio.NewReader(r), dec.NewDecoder()))
	configureReader(reader, opts)

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	headerRow := opts.HeaderRow
	if headerRow <= 0 {
		headerRow = 1
	}
	if len(allRows) < headerRow {
		return nil, ErrEmpty
	}

	start := opts.DataStartRow - 1
	if start < headerRow {
		start = headerRow
	}
	var records [][]string
	if start < len(allRows) {
		records = allRows[start:]
	}

	return fromRecords("", allRows[headerRow-1], records), nil
}

// configureReader applies delimiter aliases and lenient parsing.
func configureReader(reader *csv.Reader, opts CSVOptions) {
	switch strings.ToLower(opts.Delimiter) {
	case "\\t", "\t", "tab":
		reader.Comma = '\t'
	case "pipe":
		reader.Comma = '|'
	case "semicolon":
		reader.Comma = ';'
	case "":
		reader.Comma = ','
	default:
		reader.Comma = []rune(opts.Delimiter)[0]
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// decoderFor resolves an encoding name.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}
