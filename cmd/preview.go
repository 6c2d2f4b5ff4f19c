// =============================================================================
// Docx Mail Merge - Preview Command
// =============================================================================
//
// COMMAND USAGE:
//   mailmerge preview --profile brief.yaml [--row 1] [--lang NL]
//
// Renders the template body for one data row as markdown. Paragraphs that
// fail to render are shown as written in the template.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	previewProfile string
	previewRow     int
	previewLang    string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show one rendered row as markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewProfile, "profile", "p", "", "Path to the mapping profile")
	previewCmd.Flags().IntVar(&previewRow, "row", 1, "1-based data row to preview")
	previewCmd.Flags().StringVar(&previewLang, "lang", "", "Date language: NL, US or UK")
	previewCmd.MarkFlagRequired("profile")
}

func runPreview(cmd *cobra.Command) error {
	s, err := loadSession(previewProfile)
	if err != nil {
		return err
	}

	gen, renderer := newGenerator()
	data, err := gen.Context(s.request(previewLang), previewRow)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), renderer.Preview(s.template, data))
	return nil
}
