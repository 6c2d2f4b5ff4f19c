// =============================================================================
// Docx Mail Merge - Scaffold Command
// =============================================================================
//
// COMMAND USAGE:
//   mailmerge scaffold --template brief.docx [--out template_data.xlsx]
//
// Writes an empty workbook whose header row holds the template's curly
// fields, ready to be filled in.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/docx-mail-merge/internal/dataset"
	"github.com/ginjaninja78/docx-mail-merge/internal/docx"
	"github.com/ginjaninja78/docx-mail-merge/internal/matcher"
	"github.com/ginjaninja78/docx-mail-merge/internal/placeholder"
)

var (
	scaffoldTemplate string
	scaffoldOut      string
)

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Write an empty data workbook for a template",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScaffold(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scaffoldCmd)

	scaffoldCmd.Flags().StringVarP(&scaffoldTemplate, "template", "t", "", "Path to the .docx template")
	scaffoldCmd.Flags().StringVarP(&scaffoldOut, "out", "o", "template_data.xlsx", "Path of the workbook to write")
	scaffoldCmd.MarkFlagRequired("template")
}

func runScaffold(cmd *cobra.Command) error {
	doc, err := docx.Open(scaffoldTemplate)
	if err != nil {
		return fmt.Errorf("failed to open template: %w", err)
	}

	curly, _ := placeholder.Extract(doc)
	columns := ScaffoldColumns(curly)
	if len(columns) == 0 {
		return fmt.Errorf("template %s has no simple {{ field }} placeholders", scaffoldTemplate)
	}

	if err := dataset.WriteEmptyWorkbook(scaffoldOut, columns); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Workbook with %d column(s) written to %s\n", len(columns), scaffoldOut)
	return nil
}

// ScaffoldColumns turns curly fields into column names: the "row." prefix is
// dropped, expressions are skipped and duplicates removed.
func ScaffoldColumns(curly []string) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, f := range curly {
		name := matcher.StripRowPrefix(f)
		if !placeholder.IsSimpleField(name) || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, name)
	}
	return columns
}
