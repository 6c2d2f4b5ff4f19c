// =============================================================================
// Docx Mail Merge - Command Helpers
// =============================================================================
//
// Shared setup for the commands that work from a mapping profile. Settings
// are resolved in this order: command flag, profile, main config.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/docx-mail-merge/internal/coerce"
	"github.com/ginjaninja78/docx-mail-merge/internal/config"
	"github.com/ginjaninja78/docx-mail-merge/internal/dataset"
	"github.com/ginjaninja78/docx-mail-merge/internal/document"
	"github.com/ginjaninja78/docx-mail-merge/internal/docx"
	"github.com/ginjaninja78/docx-mail-merge/internal/generator"
	"github.com/ginjaninja78/docx-mail-merge/internal/render"
)

// session is a loaded profile with its template and data.
type session struct {
	profile  *config.MergeProfile
	template *document.Document
	data     *dataset.Dataset
}

// loadSession reads a mapping profile and the files it names.
func loadSession(profilePath string) (*session, error) {
	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}

	tpl, err := docx.Open(profile.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}

	data, err := dataset.Load(profile.Data, datasetOptions(profile.Sheet))
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	logger.Debug("session loaded",
		"template", profile.Template,
		"data", profile.Data,
		"rows", data.Len(),
		"columns", len(data.Columns))

	return &session{profile: profile, template: tpl, data: data}, nil
}

// datasetOptions combines the configured reader settings with a sheet
// override.
func datasetOptions(sheet string) dataset.Options {
	opts := dataset.Options{CSV: mainConfig.CSV, Sheet: mainConfig.Sheet}
	if sheet != "" {
		opts.Sheet = sheet
	}
	return opts
}

// newGenerator wires the renderer and formatter from the main config.
func newGenerator() (*generator.Generator, *render.GonjaRenderer) {
	renderer := render.NewGonjaRenderer(logger)
	formatter := coerce.NewFormatter(mainConfig.NumberLocale)
	return generator.New(renderer, formatter, logger), renderer
}

// request builds a generation request from a session and the main config.
func (s *session) request(lang string) generator.Request {
	return generator.Request{
		Template:        s.template,
		TemplatePath:    s.profile.Template,
		Data:            s.data,
		Mapping:         s.profile.Fields,
		SquareFields:    s.profile.SquareFields,
		Language:        coerce.ParseLanguage(firstOf(lang, s.profile.Language, mainConfig.Language)),
		OutputDir:       mainConfig.OutputDir,
		FilePrefix:      firstOf(s.profile.FilePrefix, mainConfig.FilePrefix),
		FileNameFormat:  mainConfig.FileNameFormat,
		PrimaryColumn:   firstOf(s.profile.PrimaryColumn, mainConfig.PrimaryColumn),
		SecondaryColumn: firstOf(s.profile.SecondaryColumn, mainConfig.SecondaryColumn),
		Cleanup:         mainConfig.Cleanup.Options(),
		ContinueOnError: mainConfig.ContinueOnError,
		Bundle:          mainConfig.Bundle,
		WriteSummary:    mainConfig.WriteSummary,
	}
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
