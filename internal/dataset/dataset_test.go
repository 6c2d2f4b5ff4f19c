package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/docx-mail-merge/internal/coerce"
	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

func TestReadCSV(t *testing.T) {
	in := "Naam ; Bedrag;;Post Code\nJan;1234,5;x;1234 AB\n;;;\nPiet;;y;\n"

	ds, err := ReadCSV(strings.NewReader(in), CSVOptions{Delimiter: "semicolon"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Naam", "Bedrag", "Column_3", "Post_Code"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, types.Row{"Naam": "Jan", "Bedrag": "1234,5", "Column_3": "x", "Post_Code": "1234 AB"}, ds.Rows[0])
	assert.Nil(t, ds.Rows[1]["Bedrag"])
	assert.Nil(t, ds.Rows[1]["Post_Code"])
}

func TestReadCSVShortRows(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("a,b,c\n1\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.Row{"a": "1", "b": nil, "c": nil}, ds.Rows[0])
}

func TestReadCSVEncodings(t *testing.T) {
	latin := []byte("Naam,Plaats\nJos\xe9,Li\xe8ge\n")
	ds, err := ReadCSV(bytes.NewReader(latin), CSVOptions{Encoding: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "José", ds.Rows[0]["Naam"])
	assert.Equal(t, "Liège", ds.Rows[0]["Plaats"])

	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Naam\nJan\n")...)
	ds, err = ReadCSV(bytes.NewReader(bom), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Naam"}, ds.Columns)

	_, err = ReadCSV(strings.NewReader("a\n1\n"), CSVOptions{Encoding: "klingon"})
	assert.Error(t, err)
}

func TestReadCSVHeaderAndStartRows(t *testing.T) {
	in := "Export 2024\nNaam,Bedrag\nskip,me\nJan,10\n"
	ds, err := ReadCSV(strings.NewReader(in), CSVOptions{HeaderRow: 2, DataStartRow: 4})
	require.NoError(t, err)

	assert.Equal(t, []string{"Naam", "Bedrag"}, ds.Columns)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "Jan", ds.Rows[0]["Naam"])
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Naam\nJan\n"), 0644))
	ds, err := Load(csvPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, csvPath, ds.Source)
	assert.Equal(t, 1, ds.Len())

	_, err = Load(filepath.Join(dir, "data.json"), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Naam", "Bedrag Incl"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Jan", 1500}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Piet"}))
	_, err := f.NewSheet("Tweede")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Tweede", "A1", &[]interface{}{"Code"}))
	require.NoError(t, f.SetSheetRow("Tweede", "A2", &[]interface{}{"X1"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Naam", "Bedrag_Incl"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "1500", ds.Rows[0]["Bedrag_Incl"])
	assert.Nil(t, ds.Rows[1]["Bedrag_Incl"])

	ds, err = LoadXLSX(path, "Tweede")
	require.NoError(t, err)
	assert.Equal(t, []any{"X1"}, ds.Column("Code"))
}

func TestLoadXLSXStoredValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typed.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Naam", "Datum", "Bedrag", "Vervaldag", "Actief", "Code"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{
		"Jan", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 1234.5, 45306, true, "007",
	}))

	grouped, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C2", "C2", grouped))

	dayFirst := "dd/mm/yyyy"
	custom, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dayFirst})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "D2", "D2", custom))

	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
	row := ds.Rows[0]

	assert.Equal(t, "2024-01-15 00:00:00", row["Datum"])
	assert.Equal(t, "1234.5", row["Bedrag"])
	assert.Equal(t, "2024-01-15 00:00:00", row["Vervaldag"])
	assert.Equal(t, "TRUE", row["Actief"])
	assert.Equal(t, "007", row["Code"])

	assert.Equal(t, "15 januari 2024", coerce.FormatFieldValue(row["Datum"], "Datum", coerce.LanguageNL))
	assert.Equal(t, "€1.234,50", coerce.FormatFieldValue(row["Bedrag"], "Bedrag", coerce.LanguageNL))
}

func TestFormatKind(t *testing.T) {
	text := func(s string) *string { return &s }

	assert.Equal(t, kindDate, formatKind(14, nil))
	assert.Equal(t, kindDate, formatKind(22, nil))
	assert.Equal(t, kindTime, formatKind(20, nil))
	assert.Equal(t, kindPlain, formatKind(4, nil))
	assert.Equal(t, kindPlain, formatKind(0, nil))

	assert.Equal(t, kindDate, formatKind(0, text("[$-413]d mmmm yyyy")))
	assert.Equal(t, kindDate, formatKind(0, text("mmm-yy")))
	assert.Equal(t, kindTime, formatKind(0, text("hh:mm")))
	assert.Equal(t, kindPlain, formatKind(0, text(`#,##0.00 "days"`)))
	assert.Equal(t, kindPlain, formatKind(0, text("[$€-413] #,##0.00;[Red]-#,##0.00")))
}

func TestRecordMapsAndHead(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"a", "b"},
		Rows:    []types.Row{{"a": "1", "b": nil}, {"a": "2", "b": "x"}},
	}

	assert.Equal(t, []map[string]any{{"a": "1", "b": ""}, {"a": "2", "b": "x"}}, ds.RecordMaps())
	assert.Len(t, ds.Head(1), 1)
	assert.Len(t, ds.Head(10), 2)
}

func TestNormalizeColumnName(t *testing.T) {
	assert.Equal(t, "First_Name", NormalizeColumnName("  First Name "))
	assert.Equal(t, "a__b", NormalizeColumnName("a  b"))
}

func TestWriteEmptyWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leeg.xlsx")

	require.NoError(t, WriteEmptyWorkbook(path, []string{"Naam", "Bedrag", "row.Datum"}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Naam", "Bedrag", "row.Datum"}, rows[0])

	width, err := f.GetColWidth(sheet, "C")
	require.NoError(t, err)
	assert.Equal(t, float64(ScaffoldColumnWidth), width)
}
