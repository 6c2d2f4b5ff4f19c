// =============================================================================
// Docx Mail Merge - Fields Command
// =============================================================================
//
// COMMAND USAGE:
//   mailmerge fields --template brief.docx [--json]
//
// Lists the {{ curly }} and [square] placeholders of a template, whether it
// defines macros, and the result of the placeholder syntax check.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/docx-mail-merge/internal/docx"
	"github.com/ginjaninja78/docx-mail-merge/internal/placeholder"
)

var fieldsTemplate string
var fieldsJSON bool

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the placeholders of a template",
	Long: `The fields command reads a .docx template and lists its placeholders:

  {{ field }}   curly fields, filled from mapped data columns
  [field]       square fields, filled only when included in the profile

It also reports macros and placeholders that will not render.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFields(cmd)
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)

	fieldsCmd.Flags().StringVarP(&fieldsTemplate, "template", "t", "", "Path to the .docx template")
	fieldsCmd.Flags().BoolVar(&fieldsJSON, "json", false, "Print the result as JSON")
	fieldsCmd.MarkFlagRequired("template")
}

// fieldsReport is the JSON shape of the fields command.
type fieldsReport struct {
	Template string              `json:"template"`
	Curly    []string            `json:"curly"`
	Square   []string            `json:"square"`
	Macros   bool                `json:"macros"`
	Issues   []placeholder.Issue `json:"issues"`
}

func runFields(cmd *cobra.Command) error {
	doc, err := docx.Open(fieldsTemplate)
	if err != nil {
		return fmt.Errorf("failed to open template: %w", err)
	}

	curly, square := placeholder.Extract(doc)
	issues := placeholder.Validate(curly).Issues()
	macros := placeholder.HasMacros(doc)

	out := cmd.OutOrStdout()
	if fieldsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(fieldsReport{
			Template: fieldsTemplate,
			Curly:    curly,
			Square:   square,
			Macros:   macros,
			Issues:   issues,
		})
	}

	fmt.Fprintf(out, "Template: %s\n\n", fieldsTemplate)
	fmt.Fprintf(out, "Curly fields (%d):\n", len(curly))
	for _, f := range curly {
		fmt.Fprintf(out, "  - %s\n", f)
	}
	fmt.Fprintf(out, "\nSquare fields (%d):\n", len(square))
	for _, f := range square {
		fmt.Fprintf(out, "  - %s\n", f)
	}
	if macros {
		fmt.Fprintln(out, "\nThe template defines macros.")
	}
	fmt.Fprintf(out, "\n%s\n", placeholder.FormatIssues(issues))
	return nil
}
