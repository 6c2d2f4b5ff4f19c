// =============================================================================
// Docx Mail Merge - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the per-merge
// mapping profile.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Output, naming, formatting and reader settings
//   2. Mapping Profile (profile.yaml): Template, data file and field mapping
//
// LOADING ORDER (main config):
//   defaults -> YAML file -> MAILMERGE_* environment variables -> validation
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/docx-mail-merge/internal/dataset"
	"github.com/ginjaninja78/docx-mail-merge/internal/document"
	"github.com/ginjaninja78/docx-mail-merge/pkg/utils"
)

// DefaultConfigFile is read when no --config flag is given. It may be absent.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. MAILMERGE_OUTPUT_DIR.
const EnvPrefix = "MAILMERGE"

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is the directory where generated documents are placed.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`

	// FilePrefix starts every generated file name.
	// Default: "Document"
	FilePrefix string `yaml:"file_prefix" envconfig:"FILE_PREFIX"`

	// FileNameFormat defines the format for output file names.
	// Placeholders:
	//   {prefix} - FilePrefix
	//   {value}  - Primary column value (secondary when empty)
	//   {date}   - Current date (YYYY-MM-DD)
	//   {uuid}   - A random UUID
	//   {index}  - 1-based row number
	// Default: "{prefix} {value} {date}"
	FileNameFormat string `yaml:"file_name_format" envconfig:"FILE_NAME_FORMAT" validate:"required"`

	// PrimaryColumn supplies the {value} part of file names.
	PrimaryColumn string `yaml:"primary_column" envconfig:"PRIMARY_COLUMN"`

	// SecondaryColumn is used when the primary column is empty.
	SecondaryColumn string `yaml:"secondary_column" envconfig:"SECONDARY_COLUMN"`

	// OutputFormat is "docx", "md" or "txt".
	// Default: "docx"
	OutputFormat string `yaml:"output_format" envconfig:"OUTPUT_FORMAT" validate:"oneof=docx md txt"`

	// IncludeHeaders writes headers and footers into md and txt output.
	// Default: true
	IncludeHeaders bool `yaml:"include_headers" envconfig:"INCLUDE_HEADERS"`

	// Bundle additionally packs the run's documents into one zip file.
	// Default: false
	Bundle bool `yaml:"bundle" envconfig:"BUNDLE"`

	// WriteSummary writes a run summary next to the documents.
	// Default: true
	WriteSummary bool `yaml:"write_summary" envconfig:"WRITE_SUMMARY"`

	// =========================================================================
	// FORMATTING SETTINGS
	// =========================================================================

	// Language controls long date formatting: "NL", "US" or "UK".
	// Default: "UK"
	Language string `yaml:"language" envconfig:"LANGUAGE" validate:"oneof=NL US UK"`

	// NumberLocale controls digit grouping: "nl" (1.234,56) or "en" (1,234.56).
	// Default: "nl"
	NumberLocale string `yaml:"number_locale" envconfig:"NUMBER_LOCALE" validate:"oneof=nl en"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ContinueOnError keeps generating the remaining rows when one fails.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error" envconfig:"CONTINUE_ON_ERROR"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=text json"`

	// =========================================================================
	// READER SETTINGS
	// =========================================================================

	// CSV contains settings for parsing CSV data files.
	CSV dataset.CSVOptions `yaml:"csv" envconfig:"CSV"`

	// Sheet selects the worksheet of XLSX data files. Empty means the first.
	Sheet string `yaml:"sheet" envconfig:"SHEET"`

	// =========================================================================
	// CLEANUP SETTINGS
	// =========================================================================

	// Cleanup controls the post-render removal of leftover template lines.
	Cleanup CleanupConfig `yaml:"cleanup" envconfig:"CLEANUP"`
}

// CleanupConfig mirrors document.CleanupOptions for YAML.
type CleanupConfig struct {
	RemoveEmptyParagraphs bool `yaml:"remove_empty_paragraphs" envconfig:"REMOVE_EMPTY_PARAGRAPHS"`
	RemoveTagParagraphs   bool `yaml:"remove_tag_paragraphs" envconfig:"REMOVE_TAG_PARAGRAPHS"`
	RemoveBlankRows       bool `yaml:"remove_blank_rows" envconfig:"REMOVE_BLANK_ROWS"`

	// ShortCellLimit drops table rows whose cells are all this short.
	// Negative disables the rule. Default: 5
	ShortCellLimit int `yaml:"short_cell_limit" envconfig:"SHORT_CELL_LIMIT"`
}

// Options converts the config to document cleanup options.
func (c CleanupConfig) Options() document.CleanupOptions {
	return document.CleanupOptions{
		RemoveEmptyParagraphs: c.RemoveEmptyParagraphs,
		RemoveTagParagraphs:   c.RemoveTagParagraphs,
		RemoveBlankRows:       c.RemoveBlankRows,
		ShortCellLimit:        c.ShortCellLimit,
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	cleanup := document.DefaultCleanupOptions()
	return &MainConfig{
		OutputDir:       "./output",
		FilePrefix:      "Document",
		FileNameFormat:  utils.DefaultFileNameFormat,
		OutputFormat:    "docx",
		IncludeHeaders:  true,
		WriteSummary:    true,
		Language:        "UK",
		NumberLocale:    "nl",
		ContinueOnError: true,
		LogLevel:        "info",
		LogFormat:       "text",
		CSV: dataset.CSVOptions{
			Delimiter: ",",
			Encoding:  "UTF-8",
			HeaderRow: 1,
		},
		Cleanup: CleanupConfig{
			RemoveEmptyParagraphs: cleanup.RemoveEmptyParagraphs,
			RemoveTagParagraphs:   cleanup.RemoveTagParagraphs,
			RemoveBlankRows:       cleanup.RemoveBlankRows,
			ShortCellLimit:        cleanup.ShortCellLimit,
		},
	}
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. A missing
//     DefaultConfigFile (or an empty path) yields the defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or ErrInvalidConfig.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist) && configPath == DefaultConfigFile:
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Environment variables take precedence over the file.
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	applyMainConfigDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyMainConfigDefaults fills options left empty and normalizes case.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.FileNameFormat == "" {
		config.FileNameFormat = utils.DefaultFileNameFormat
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "docx"
	}
	if config.Language == "" {
		config.Language = "UK"
	}
	if config.NumberLocale == "" {
		config.NumberLocale = "nl"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.CSV.HeaderRow == 0 {
		config.CSV.HeaderRow = 1
	}

	config.Language = strings.ToUpper(strings.TrimSpace(config.Language))
	config.NumberLocale = strings.ToLower(strings.TrimSpace(config.NumberLocale))
	config.OutputFormat = strings.ToLower(strings.TrimSpace(config.OutputFormat))
	config.LogLevel = strings.ToLower(strings.TrimSpace(config.LogLevel))
	config.LogFormat = strings.ToLower(strings.TrimSpace(config.LogFormat))
}

// Validate checks the configuration.
func (c *MainConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}
	if !strings.Contains(c.FileNameFormat, "{value}") &&
		!strings.Contains(c.FileNameFormat, "{uuid}") &&
		!strings.Contains(c.FileNameFormat, "{index}") {
		return fmt.Errorf("%w: file_name_format needs {value}, {uuid} or {index}", ErrInvalidConfig)
	}
	return nil
}

// describe turns validator errors into one readable line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
