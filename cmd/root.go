// =============================================================================
// Docx Mail Merge - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (mailmerge)
//   ├── fieldsCmd   (mailmerge fields)
//   ├── mapCmd      (mailmerge map)
//   ├── previewCmd  (mailmerge preview)
//   ├── generateCmd (mailmerge generate)
//   ├── fillCmd     (mailmerge fill)
//   ├── scaffoldCmd (mailmerge scaffold)
//   └── versionCmd  (mailmerge version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --log-format)
//   2. Loading the main configuration before any subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/docx-mail-merge/internal/config"
	"github.com/ginjaninja78/docx-mail-merge/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logFormat overrides the configured log format when set.
var logFormat string

// mainConfig is loaded in PersistentPreRunE and shared by all subcommands.
var mainConfig *config.MainConfig

// logger is built from mainConfig in PersistentPreRunE.
var logger = slog.Default()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "mailmerge",

	Short: "Docx Mail Merge - Fill Word templates from spreadsheet rows",

	Long: `Docx Mail Merge fills a Word (.docx) template with the rows of an Excel
or CSV file and writes one personalized document per row.

Key Features:
  - Placeholder discovery ({{ field }} and [field]) with syntax checks
  - Automatic field-to-column matching, saved as an editable profile
  - Locale-aware dates, numbers and amounts (NL, US, UK)
  - A totals row for loops over the whole dataset (rows_all)
  - Output as docx, markdown or plain text

Example Usage:
  mailmerge fields --template brief.docx
  mailmerge map --template brief.docx --data klanten.xlsx --out brief.yaml
  mailmerge preview --profile brief.yaml
  mailmerge generate --profile brief.yaml --lang NL`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMainConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}
		mainConfig = cfg

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		format := cfg.LogFormat
		if logFormat != "" {
			format = logFormat
		}
		logger = logging.New(logging.Options{
			Level:  level,
			Format: format,
			Output: cmd.ErrOrStderr(),
		})
		slog.SetDefault(logger)
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"",
		"Log format: text or json (overrides the config file)",
	)
}
