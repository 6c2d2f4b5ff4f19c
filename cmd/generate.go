// =============================================================================
// Docx Mail Merge - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which is the main command for
// producing documents. It orchestrates the entire merge pipeline.
//
// COMMAND USAGE:
//   mailmerge generate --profile brief.yaml [flags]
//
// FLAGS:
//   --lang        : Date language (NL, US, UK)
//   --format      : Output format (docx, md, txt)
//   --output-dir  : Override the configured output directory
//   --bundle      : Also pack all documents into one zip file
//   --dry-run     : Render everything without writing files
//   --force       : Generate even when the template check reports issues
//
// PROCESSING PIPELINE:
//   1. Load the mapping profile, template and data
//   2. Check the template placeholders
//   3. Generate one document per data row
//   4. Print the summary
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/docx-mail-merge/internal/output"
	"github.com/ginjaninja78/docx-mail-merge/internal/placeholder"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	generateProfile   string
	generateLang      string
	generateFormat    string
	generateOutputDir string
	generateBundle    bool
	dryRun            bool
	force             bool
)

// ErrTemplateIssues is returned when the template check fails and --force
// is not set.
var ErrTemplateIssues = errors.New("template has placeholder issues (use --force to generate anyway)")

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one document per data row",
	Long: `The generate command fills the profile's template once for every row of
its data file and writes the documents to the output directory.

Every document can also loop over the whole dataset: rows_all (alias rows)
holds every data row followed by a totals row labelled "Totaal".

On error:
  - The failing row is reported and listed in the run summary
  - Processing continues for other rows unless continue_on_error is false`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateProfile, "profile", "p", "", "Path to the mapping profile")
	generateCmd.Flags().StringVar(&generateLang, "lang", "", "Date language: NL, US or UK")
	generateCmd.Flags().StringVar(&generateFormat, "format", "", "Output format: docx, md or txt")
	generateCmd.Flags().StringVar(&generateOutputDir, "output-dir", "", "Directory for the generated documents")
	generateCmd.Flags().BoolVar(&generateBundle, "bundle", false, "Also pack all documents into one zip file")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render every document without writing files")
	generateCmd.Flags().BoolVar(&force, "force", false, "Generate even when the template check reports issues")
	generateCmd.MarkFlagRequired("profile")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runGenerate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: LOAD PROFILE, TEMPLATE AND DATA
	// =========================================================================

	fmt.Fprintln(out, "=== Docx Mail Merge ===")
	s, err := loadSession(generateProfile)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: CHECK THE TEMPLATE
	// =========================================================================

	curly, _ := placeholder.Extract(s.template)
	if issues := placeholder.Validate(curly).Issues(); len(issues) > 0 {
		fmt.Fprintln(out, placeholder.FormatIssues(issues))
		if !force {
			return ErrTemplateIssues
		}
		logger.Warn("generating despite template issues", "issues", len(issues))
	}

	// =========================================================================
	// STEP 3: GENERATE
	// =========================================================================

	req := s.request(generateLang)
	req.DryRun = dryRun
	req.Bundle = req.Bundle || generateBundle
	if generateOutputDir != "" {
		req.OutputDir = generateOutputDir
	}

	format, err := output.ParseFormat(firstOf(generateFormat, mainConfig.OutputFormat))
	if err != nil {
		return err
	}
	req.Output = output.Options{
		Format:         format,
		IncludeHeaders: mainConfig.IncludeHeaders,
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	fmt.Fprintf(out, "Generating %d document(s)...\n", s.data.Len())
	gen, _ := newGenerator()
	result, runErr := gen.Run(ctx, req)
	if result == nil {
		return runErr
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	for _, d := range result.Documents {
		if d.Err != nil {
			fmt.Fprintf(out, "  ✗ row %d (%s): %v\n", d.Row, d.Value, d.Err)
		} else {
			fmt.Fprintf(out, "  ✓ row %d -> %s\n", d.Row, filepath.Base(d.Path))
		}
	}

	fmt.Fprintln(out, "\n=== Generation Complete ===")
	fmt.Fprintf(out, "Run ID:          %s\n", result.RunID)
	fmt.Fprintf(out, "Total rows:      %d\n", result.Stats.Rows)
	fmt.Fprintf(out, "Generated:       %d\n", result.Stats.Generated)
	fmt.Fprintf(out, "Errors:          %d\n", result.Stats.Failed)
	fmt.Fprintf(out, "Time elapsed:    %s\n", result.Stats.Duration)
	if dryRun {
		fmt.Fprintln(out, "Dry run: no files were written.")
	}
	if result.BundlePath != "" {
		fmt.Fprintf(out, "Bundle:          %s\n", result.BundlePath)
	}
	if result.SummaryPath != "" {
		fmt.Fprintf(out, "Summary:         %s\n", result.SummaryPath)
	}

	return runErr
}

// commandContext returns the command's context or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
