// =============================================================================
// Docx Mail Merge - Empty Data File
// =============================================================================
//
// Writes a workbook whose header row lists the template fields, so a user
// can fill in data that matches the template one-to-one.
//
// =============================================================================

package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ScaffoldColumnWidth is the width of every header column.
const ScaffoldColumnWidth = 20

// WriteEmptyWorkbook saves an XLSX file with fields as the header row. Columns
// are 20 characters wide, cells align left/top and the cursor starts at A2.
func WriteEmptyWorkbook(path string, fields []string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(fields))
	for i, field := range fields {
		header[i] = field
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	if len(fields) > 0 {
		last, err := excelize.ColumnNumberToName(len(fields))
		if err != nil {
			return fmt.Errorf("failed to resolve column name: %w", err)
		}
		if err := f.SetColWidth(sheet, "A", last, ScaffoldColumnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}

		style, err := f.NewStyle(&excelize.Style{
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top"},
		})
		if err != nil {
			return fmt.Errorf("failed to create style: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
			return fmt.Errorf("failed to apply style: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Selection: []excelize.Selection{{SQRef: "A2", ActiveCell: "A2"}},
	}); err != nil {
		return fmt.Errorf("failed to set selection: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
