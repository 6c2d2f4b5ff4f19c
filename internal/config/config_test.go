package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMainConfigDefaults(t *testing.T) {
	cfg, err := LoadMainConfig("")
	require.NoError(t, err)

	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "Document", cfg.FilePrefix)
	assert.Equal(t, "{prefix} {value} {date}", cfg.FileNameFormat)
	assert.Equal(t, "docx", cfg.OutputFormat)
	assert.Equal(t, "UK", cfg.Language)
	assert.Equal(t, "nl", cfg.NumberLocale)
	assert.True(t, cfg.ContinueOnError)
	assert.True(t, cfg.IncludeHeaders)
	assert.Equal(t, 5, cfg.Cleanup.ShortCellLimit)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
}

func TestLoadMainConfigMissingDefaultFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := LoadMainConfig(DefaultConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "UK", cfg.Language)
}

func TestLoadMainConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMainConfigFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
output_dir: ./brieven
file_prefix: Brief
language: nl
number_locale: EN
output_format: md
continue_on_error: false
csv:
  delimiter: semicolon
  encoding: latin1
cleanup:
  remove_blank_rows: false
  short_cell_limit: -1
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./brieven", cfg.OutputDir)
	assert.Equal(t, "Brief", cfg.FilePrefix)
	assert.Equal(t, "NL", cfg.Language)
	assert.Equal(t, "en", cfg.NumberLocale)
	assert.Equal(t, "md", cfg.OutputFormat)
	assert.False(t, cfg.ContinueOnError)
	assert.Equal(t, "semicolon", cfg.CSV.Delimiter)
	assert.Equal(t, 1, cfg.CSV.HeaderRow)

	opts := cfg.Cleanup.Options()
	assert.True(t, opts.RemoveEmptyParagraphs)
	assert.False(t, opts.RemoveBlankRows)
	assert.Equal(t, -1, opts.ShortCellLimit)
}

func TestLoadMainConfigEnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "file_prefix: Brief\nlanguage: NL\n")
	t.Setenv("MAILMERGE_LANGUAGE", "US")
	t.Setenv("MAILMERGE_OUTPUT_DIR", "/tmp/merge")
	t.Setenv("MAILMERGE_CSV_DELIMITER", "tab")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Brief", cfg.FilePrefix)
	assert.Equal(t, "US", cfg.Language)
	assert.Equal(t, "/tmp/merge", cfg.OutputDir)
	assert.Equal(t, "tab", cfg.CSV.Delimiter)
}

func TestLoadMainConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadMainConfig(writeFile(t, dir, "lang.yaml", "language: FR\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "Language")

	_, err = LoadMainConfig(writeFile(t, dir, "format.yaml", "output_format: pdf\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadMainConfig(writeFile(t, dir, "name.yaml", "file_name_format: \"{prefix} {date}\"\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadMainConfig(writeFile(t, dir, "broken.yaml", "language: [\n"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestProfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles", "brief.yaml")

	profile := &MergeProfile{
		Template: "brief.docx",
		Data:     "/data/klanten.xlsx",
		Language: "NL",
		Fields: types.FieldMapping{
			{Field: "Naam", Column: "Naam"},
			{Field: "row.Bedrag", Column: "Bedrag"},
			{Field: "Opmerking", Column: ""},
		},
		SquareFields: []types.SquareField{{Name: "Handtekening", Include: true}},
	}
	require.NoError(t, SaveProfile(path, profile))

	loaded, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "profiles", "brief.docx"), loaded.Template)
	assert.Equal(t, "/data/klanten.xlsx", loaded.Data)
	assert.Equal(t, profile.Fields, loaded.Fields)
	assert.Equal(t, profile.SquareFields, loaded.SquareFields)
	assert.Equal(t, "NL", loaded.Language)
}

func TestLoadProfileInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadProfile(writeFile(t, dir, "p.yaml", "data: d.csv\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadProfile(writeFile(t, dir, "q.yaml", "template: t.docx\ndata: d.csv\nlanguage: DE\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadProfile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
