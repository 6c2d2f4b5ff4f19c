// =============================================================================
// Docx Mail Merge - Fill Command
// =============================================================================
//
// COMMAND USAGE:
//   mailmerge fill --template brief.docx --set Naam=Jan --set Datum="5 maart 2024" --out brief-jan.docx
//
// Fills a single document from values given on the command line, without a
// data file. Fields without a value render as empty text.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/docx-mail-merge/internal/docx"
	"github.com/ginjaninja78/docx-mail-merge/internal/output"
)

var (
	fillTemplate string
	fillValues   map[string]string
	fillOut      string
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill one document from values given on the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFill(cmd)
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().StringVarP(&fillTemplate, "template", "t", "", "Path to the .docx template")
	fillCmd.Flags().StringToStringVar(&fillValues, "set", nil, "Field value as name=value (repeatable)")
	fillCmd.Flags().StringVarP(&fillOut, "out", "o", "Document.docx", "Output file (.docx, .md or .txt)")
	fillCmd.MarkFlagRequired("template")
}

func runFill(cmd *cobra.Command) error {
	tpl, err := docx.Open(fillTemplate)
	if err != nil {
		return fmt.Errorf("failed to open template: %w", err)
	}

	format, err := output.ParseFormat(strings.TrimPrefix(filepath.Ext(fillOut), "."))
	if err != nil {
		return err
	}

	gen, _ := newGenerator()
	doc, err := gen.RenderSingle(commandContext(cmd), tpl, fillValues, mainConfig.Cleanup.Options())
	if err != nil {
		return err
	}

	opts := output.Options{Format: format, IncludeHeaders: mainConfig.IncludeHeaders}
	if err := output.WriteFile(fillOut, doc, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Document written to %s\n", fillOut)
	return nil
}
