// =============================================================================
// Docx Mail Merge - Map Command
// =============================================================================
//
// COMMAND USAGE:
//   mailmerge map --template brief.docx --data klanten.xlsx [--out brief.yaml]
//
// Proposes a column for every curly field by comparing normalized names,
// shows an example value from the first data row, and optionally saves the
// proposal as a mapping profile. The profile is plain YAML and can be edited
// by hand before running preview or generate.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/docx-mail-merge/internal/coerce"
	"github.com/ginjaninja78/docx-mail-merge/internal/config"
	"github.com/ginjaninja78/docx-mail-merge/internal/dataset"
	"github.com/ginjaninja78/docx-mail-merge/internal/docx"
	"github.com/ginjaninja78/docx-mail-merge/internal/matcher"
	"github.com/ginjaninja78/docx-mail-merge/internal/placeholder"
	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

var (
	mapTemplate      string
	mapData          string
	mapSheet         string
	mapOut           string
	mapIncludeSquare bool
	mapPrimary       string
	mapSecondary     string
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Match template fields to data columns",
	Long: `The map command pairs each {{ field }} of the template with a data column.
Names are compared after lower-casing and removing spaces and underscores, so
{{ Voornaam Klant }} matches a column "voornaam_klant". A leading "row." on a
field is ignored.

With --out the proposal is saved as a mapping profile for preview and generate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMap(cmd)
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)

	mapCmd.Flags().StringVarP(&mapTemplate, "template", "t", "", "Path to the .docx template")
	mapCmd.Flags().StringVarP(&mapData, "data", "d", "", "Path to the .xlsx or .csv data file")
	mapCmd.Flags().StringVar(&mapSheet, "sheet", "", "Worksheet to read (default: first sheet)")
	mapCmd.Flags().StringVarP(&mapOut, "out", "o", "", "Save the proposal as a mapping profile")
	mapCmd.Flags().BoolVar(&mapIncludeSquare, "include-square", false, "Fill all [square] fields from the data")
	mapCmd.Flags().StringVar(&mapPrimary, "primary", "", "Column used in output file names")
	mapCmd.Flags().StringVar(&mapSecondary, "secondary", "", "Column used when the primary column is empty")
	mapCmd.MarkFlagRequired("template")
	mapCmd.MarkFlagRequired("data")
}

func runMap(cmd *cobra.Command) error {
	doc, err := docx.Open(mapTemplate)
	if err != nil {
		return fmt.Errorf("failed to open template: %w", err)
	}
	curly, square := placeholder.Extract(doc)

	data, err := dataset.Load(mapData, datasetOptions(mapSheet))
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	suggestions := matcher.CreateFieldMapping(curly, data.Columns, data.Head(1))

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tCOLUMN\tEXAMPLE")
	for _, s := range suggestions {
		column := s.Column
		if column == "" {
			column = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Field, column, coerce.StringOf(s.Example))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if unmatched := suggestions.Unmatched(); len(unmatched) > 0 {
		fmt.Fprintf(out, "\nUnmatched fields (%d): these render as empty text.\n", len(unmatched))
		for _, f := range unmatched {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}
	if extra := matcher.ExtraColumns(curly, data.Columns); len(extra) > 0 {
		fmt.Fprintf(out, "\nColumns not used by the template (%d):\n", len(extra))
		for _, c := range extra {
			fmt.Fprintf(out, "  - %s\n", c)
		}
	}

	if mapOut == "" {
		return nil
	}

	squareFields := make([]types.SquareField, 0, len(square))
	for _, name := range square {
		squareFields = append(squareFields, types.SquareField{Name: name, Include: mapIncludeSquare})
	}

	profile := &config.MergeProfile{
		Template:        relativeTo(mapOut, mapTemplate),
		Data:            relativeTo(mapOut, mapData),
		Sheet:           mapSheet,
		PrimaryColumn:   mapPrimary,
		SecondaryColumn: mapSecondary,
		Fields:          suggestions.Mapping(),
		SquareFields:    squareFields,
	}
	if err := config.SaveProfile(mapOut, profile); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nProfile saved to %s\n", mapOut)
	return nil
}

// relativeTo expresses target relative to the directory of file, falling
// back to an absolute path.
func relativeTo(file, target string) string {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return target
	}
	absDir, err := filepath.Abs(filepath.Dir(file))
	if err != nil {
		return absTarget
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil {
		return absTarget
	}
	return rel
}
