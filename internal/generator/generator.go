// =============================================================================
// Docx Mail Merge - Generator Module
// =============================================================================
//
// This module contains the batch generation logic. It orchestrates the whole
// pipeline for one template and one dataset.
//
// GENERATION PIPELINE:
//   1. Calculate the totals row for the full dataset
//   2. Build rows_all (every row plus the totals row)
//   3. For each data row:
//      a. Build the render context
//      b. Render the template
//      c. Remove leftover template lines
//      d. Serialize and write the output file
//   4. Optionally bundle the documents into a zip file
//   5. Write the run summary
//
// Rows are processed in dataset order. A cancelled context stops the pass
// between rows.
//
// =============================================================================

package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/docx-mail-merge/internal/coerce"
	"github.com/ginjaninja78/docx-mail-merge/internal/dataset"
	"github.com/ginjaninja78/docx-mail-merge/internal/document"
	"github.com/ginjaninja78/docx-mail-merge/internal/logging"
	"github.com/ginjaninja78/docx-mail-merge/internal/output"
	"github.com/ginjaninja78/docx-mail-merge/internal/render"
	"github.com/ginjaninja78/docx-mail-merge/internal/renderctx"
	"github.com/ginjaninja78/docx-mail-merge/internal/totals"
	"github.com/ginjaninja78/docx-mail-merge/internal/types"
	"github.com/ginjaninja78/docx-mail-merge/pkg/utils"
)

var (
	// ErrNoTemplate is returned when a request has no template document.
	ErrNoTemplate = errors.New("no template document")

	// ErrNoData is returned when a request has no dataset.
	ErrNoData = errors.New("no dataset")
)

// =============================================================================
// REQUEST AND RESULT STRUCTURES
// =============================================================================

// Request describes one batch generation run.
type Request struct {
	// Template is the loaded template document. It is not modified.
	Template *document.Document

	// TemplatePath is only used in the run summary.
	TemplatePath string

	// Data holds the rows to merge.
	Data *dataset.Dataset

	// Mapping pairs template fields with data columns.
	Mapping types.FieldMapping

	// SquareFields lists the bracketed fields and whether to fill them.
	SquareFields []types.SquareField

	// Language controls long date formatting.
	Language coerce.Language

	// OutputDir is the directory where documents are written.
	OutputDir string

	// FilePrefix, FileNameFormat, PrimaryColumn and SecondaryColumn control
	// output file names. See utils.OutputFileName.
	FilePrefix      string
	FileNameFormat  string
	PrimaryColumn   string
	SecondaryColumn string

	// Output selects the serializer.
	Output output.Options

	// Cleanup controls the removal of leftover template lines.
	Cleanup document.CleanupOptions

	// ContinueOnError keeps going when a row fails.
	ContinueOnError bool

	// DryRun renders every document without writing files.
	DryRun bool

	// Bundle packs the written documents into a zip file.
	Bundle bool

	// WriteSummary writes a run summary into OutputDir.
	WriteSummary bool
}

// Document is the outcome of one data row.
type Document struct {
	// Row is the 1-based row number in the dataset.
	Row int

	// Value is the file name value taken from the row.
	Value string

	// Path is the written file. Empty on failure.
	Path string

	// Size is the number of bytes written.
	Size int64

	// Err is set when the row failed.
	Err error
}

// Stats contains statistics about a run.
type Stats struct {
	Rows              int
	Generated         int
	Failed            int
	ParagraphsRemoved int
	RowsRemoved       int
	Duration          time.Duration
}

// Result represents the outcome of a run.
type Result struct {
	RunID       string
	Documents   []Document
	Stats       Stats
	BundlePath  string
	SummaryPath string
}

// Paths returns the paths of all written documents.
func (r *Result) Paths() []string {
	var out []string
	for _, d := range r.Documents {
		if d.Err == nil && d.Path != "" {
			out = append(out, d.Path)
		}
	}
	return out
}

// =============================================================================
// GENERATOR STRUCTURE
// =============================================================================

// Generator runs batch and single-document generation.
type Generator struct {
	renderer render.Renderer
	builder  *renderctx.Builder
	totals   *totals.Aggregator
	logger   *slog.Logger
}

// New creates a Generator.
//
// PARAMETERS:
//   - renderer: The template renderer.
//   - formatter: Number formatting used for context values and totals.
//   - logger: The logger; nil uses slog.Default().
func New(renderer render.Renderer, formatter coerce.Formatter, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		renderer: renderer,
		builder:  renderctx.NewBuilder(formatter),
		totals:   totals.NewAggregator(formatter),
		logger:   logger.With("component", "generator"),
	}
}

// =============================================================================
// BATCH GENERATION
// =============================================================================

// Run generates one document per data row.
//
// RETURNS:
//   - The run result. It is returned even when an error stops the run, and
//     then holds the rows processed so far.
//   - ErrNoTemplate or ErrNoData for incomplete requests, the context error
//     when cancelled, or the first row error when ContinueOnError is false.
func (g *Generator) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Template == nil {
		return nil, ErrNoTemplate
	}
	if req.Data == nil {
		return nil, ErrNoData
	}

	startTime := time.Now()
	result := &Result{RunID: uuid.New().String()}
	ctx = logging.WithRunID(ctx, result.RunID)

	fm := utils.NewFileManager(req.OutputDir)
	if !req.DryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return nil, err
		}
	}

	// =========================================================================
	// STEP 1: TOTALS AND FULL DATASET
	// =========================================================================

	rowsAll := g.RowsAll(req.Data)
	records := req.Data.Records()
	result.Stats.Rows = len(records)

	g.logger.InfoContext(ctx, "generation started",
		"rows", len(records),
		"template", req.TemplatePath,
		"data", req.Data.Source,
		"dry_run", req.DryRun)

	// =========================================================================
	// STEP 2: ONE DOCUMENT PER ROW
	// =========================================================================

	var runErr error
	for i, row := range records {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		doc := g.generateRow(ctx, req, fm, i+1, row, rowsAll, &result.Stats)
		result.Documents = append(result.Documents, doc)

		if doc.Err != nil {
			result.Stats.Failed++
			g.logger.ErrorContext(ctx, "document failed", "row", doc.Row, "error", doc.Err)
			if !req.ContinueOnError {
				runErr = fmt.Errorf("row %d: %w", doc.Row, doc.Err)
				break
			}
			continue
		}
		result.Stats.Generated++
		g.logger.DebugContext(ctx, "document generated", "row", doc.Row, "file", doc.Path)
	}

	// =========================================================================
	// STEP 3: BUNDLE AND SUMMARY
	// =========================================================================

	if req.Bundle && !req.DryRun && result.Stats.Generated > 0 {
		bundlePath := filepath.Join(req.OutputDir, utils.BundleFileName(req.FilePrefix, startTime))
		if err := utils.WriteZip(bundlePath, result.Paths()); err != nil {
			g.logger.ErrorContext(ctx, "bundle failed", "error", err)
		} else {
			result.BundlePath = bundlePath
		}
	}

	result.Stats.Duration = time.Since(startTime)

	if req.WriteSummary && !req.DryRun {
		path, err := utils.WriteSummaryLog(summaryOf(req, result, startTime), req.OutputDir)
		if err != nil {
			g.logger.ErrorContext(ctx, "summary failed", "error", err)
		} else {
			result.SummaryPath = path
		}
	}

	g.logger.InfoContext(ctx, "generation finished",
		"generated", result.Stats.Generated,
		"failed", result.Stats.Failed,
		"duration", result.Stats.Duration)

	return result, runErr
}

// generateRow renders and writes the document for one row.
func (g *Generator) generateRow(ctx context.Context, req Request, fm *utils.FileManager, index int, row types.Row, rowsAll []map[string]any, stats *Stats) Document {
	doc := Document{
		Row:   index,
		Value: utils.SafeValue(lookup(row, req.PrimaryColumn), lookup(row, req.SecondaryColumn)),
	}

	data := g.builder.Build(row, req.Mapping, req.SquareFields, req.Language)
	renderctx.WithDataset(data, rowsAll)

	rendered, err := g.renderer.Render(ctx, req.Template, data)
	if err != nil {
		doc.Err = err
		return doc
	}

	cleaned := document.Cleanup(rendered, req.Cleanup)
	stats.ParagraphsRemoved += cleaned.ParagraphsRemoved
	stats.RowsRemoved += cleaned.RowsRemoved

	content, err := output.Generate(rendered, req.Output)
	if err != nil {
		doc.Err = err
		return doc
	}

	format := req.Output.Format
	if format == "" {
		format = output.FormatDocx
	}
	name := utils.OutputFileName(req.FileNameFormat, utils.NameParams{
		Prefix:    req.FilePrefix,
		Value:     doc.Value,
		Index:     index,
		Extension: format.Extension(),
	})
	path := fm.Reserve(name)

	if !req.DryRun {
		if err := os.WriteFile(path, content, 0644); err != nil {
			doc.Err = fmt.Errorf("failed to write output file: %w", err)
			return doc
		}
	}

	doc.Path = path
	doc.Size = int64(len(content))
	return doc
}

// RowsAll returns every data row with missing cells as "" followed by the
// totals row.
func (g *Generator) RowsAll(ds *dataset.Dataset) []map[string]any {
	rowsAll := ds.RecordMaps()
	return append(rowsAll, totals.AsRecord(g.totals.Calculate(ds)))
}

// Context builds the full render context of one row (1-based), as used
// during Run.
func (g *Generator) Context(req Request, index int) (types.RenderContext, error) {
	if req.Data == nil {
		return nil, ErrNoData
	}
	records := req.Data.Records()
	if index < 1 || index > len(records) {
		return nil, fmt.Errorf("row %d out of range 1..%d", index, len(records))
	}
	data := g.builder.Build(records[index-1], req.Mapping, req.SquareFields, req.Language)
	return renderctx.WithDataset(data, g.RowsAll(req.Data)), nil
}

// =============================================================================
// SINGLE DOCUMENT
// =============================================================================

// RenderSingle renders one document from manually entered values. Keys are
// template field names; "row." keys are addressable as {{ row.Field }}.
func (g *Generator) RenderSingle(ctx context.Context, tpl *document.Document, values map[string]string, cleanup document.CleanupOptions) (*document.Document, error) {
	if tpl == nil {
		return nil, ErrNoTemplate
	}
	data := make(types.RenderContext, len(values))
	for k, v := range values {
		data[k] = v
	}

	rendered, err := g.renderer.Render(ctx, tpl, data)
	if err != nil {
		return nil, err
	}
	document.Cleanup(rendered, cleanup)
	return rendered, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// lookup reads a column by its configured or normalized name.
func lookup(row types.Row, column string) any {
	if column == "" {
		return nil
	}
	if v, ok := row[column]; ok {
		return v
	}
	return row[dataset.NormalizeColumnName(column)]
}

func summaryOf(req Request, result *Result, start time.Time) utils.RunSummary {
	summary := utils.RunSummary{
		RunID:     result.RunID,
		StartTime: start,
		EndTime:   start.Add(result.Stats.Duration),
		Template:  req.TemplatePath,
		Data:      req.Data.Source,
		TotalRows: result.Stats.Rows,
		Generated: result.Stats.Generated,
		Failed:    result.Stats.Failed,
	}
	for _, d := range result.Documents {
		info := utils.DocumentInfo{Row: d.Row, Value: d.Value, OutputFile: d.Path, Size: d.Size}
		if d.Err != nil {
			info.Error = d.Err.Error()
		}
		summary.Documents = append(summary.Documents, info)
	}
	return summary
}
