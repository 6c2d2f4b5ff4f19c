package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/docx-mail-merge/internal/coerce"
	"github.com/ginjaninja78/docx-mail-merge/internal/dataset"
	"github.com/ginjaninja78/docx-mail-merge/internal/document"
	"github.com/ginjaninja78/docx-mail-merge/internal/logging"
	"github.com/ginjaninja78/docx-mail-merge/internal/output"
	"github.com/ginjaninja78/docx-mail-merge/internal/render"
	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

const csvData = "Naam;Bedrag;Datum\nJan;1234,5;2024-01-15\nPiet;10;2024-03-05\n"

func loadData(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV(strings.NewReader(csvData), dataset.CSVOptions{Delimiter: "semicolon"})
	require.NoError(t, err)
	return ds
}

func letter() *document.Document {
	doc := document.New()
	doc.AddParagraph("Beste {{ Naam }},")
	doc.AddParagraph("Bedrag: {{ row.Bedrag }} op {{ Datum }}")
	doc.AddParagraph("{% for r in rows_all %}")
	doc.AddParagraph("{{ r.Naam }}: {{ r.Bedrag }}")
	doc.AddParagraph("{% endfor %}")
	return doc
}

func request(t *testing.T, dir string) Request {
	return Request{
		Template:        letter(),
		TemplatePath:    "brief.docx",
		Data:            loadData(t),
		Mapping:         types.FieldMapping{{Field: "Naam", Column: "Naam"}, {Field: "Bedrag", Column: "Bedrag"}, {Field: "Datum", Column: "Datum"}},
		Language:        coerce.LanguageNL,
		OutputDir:       dir,
		FilePrefix:      "Brief",
		FileNameFormat:  "{prefix} {value}",
		PrimaryColumn:   "Naam",
		Output:          output.Options{Format: output.FormatMarkdown},
		Cleanup:         document.DefaultCleanupOptions(),
		ContinueOnError: true,
	}
}

func newGenerator() *Generator {
	return New(render.NewGonjaRenderer(logging.Discard()), coerce.DefaultFormatter, logging.Discard())
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	result, err := newGenerator().Run(context.Background(), request(t, dir))
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Stats.Rows)
	assert.Equal(t, 2, result.Stats.Generated)
	assert.Zero(t, result.Stats.Failed)
	assert.Greater(t, result.Stats.ParagraphsRemoved, 0)
	require.Len(t, result.Documents, 2)
	assert.Equal(t, filepath.Join(dir, "Brief Jan.md"), result.Documents[0].Path)

	content, err := os.ReadFile(result.Documents[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "Beste Jan,\n\n"+
		"Bedrag: €1.234,50 op 15 januari 2024\n\n"+
		"Jan: 1234,5\n\n"+
		"Piet: 10\n\n"+
		"Totaal: €1.244,50\n\n", string(content))

	content, err = os.ReadFile(result.Documents[1].Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Bedrag: €10,00 op 5 maart 2024")
}

func TestRunWritesDocx(t *testing.T) {
	dir := t.TempDir()
	req := request(t, dir)
	req.Output = output.DefaultOptions()

	result, err := newGenerator().Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ".docx", filepath.Ext(result.Documents[0].Path))
	assert.Greater(t, result.Documents[0].Size, int64(0))
}

func TestRunSummaryAndBundle(t *testing.T) {
	dir := t.TempDir()
	req := request(t, dir)
	req.Bundle = true
	req.WriteSummary = true

	result, err := newGenerator().Run(context.Background(), req)
	require.NoError(t, err)

	require.NotEmpty(t, result.BundlePath)
	assert.FileExists(t, result.BundlePath)
	require.NotEmpty(t, result.SummaryPath)

	summary, err := os.ReadFile(result.SummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summary), result.RunID)
	assert.Contains(t, string(summary), "Brief Jan.md")
}

func TestRunDryRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	req := request(t, dir)
	req.DryRun = true
	req.WriteSummary = true

	result, err := newGenerator().Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Generated)
	assert.NoDirExists(t, dir)
	assert.Empty(t, result.SummaryPath)
}

func TestRunDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	req := request(t, dir)
	req.PrimaryColumn = "Missing"
	req.SecondaryColumn = ""

	result, err := newGenerator().Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Brief.md"), result.Documents[0].Path)
	assert.Equal(t, filepath.Join(dir, "Brief (2).md"), result.Documents[1].Path)
}

type fakeRenderer struct{ fail string }

func (f fakeRenderer) Render(_ context.Context, _ *document.Document, data types.RenderContext) (*document.Document, error) {
	if data["Naam"] == f.fail {
		return nil, errors.New("boom")
	}
	doc := document.New()
	doc.AddParagraph(fmt.Sprint(data["Naam"]))
	return doc, nil
}

func TestRunContinueOnError(t *testing.T) {
	g := New(fakeRenderer{fail: "Jan"}, coerce.DefaultFormatter, logging.Discard())

	result, err := g.Run(context.Background(), request(t, t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Generated)
	assert.Equal(t, 1, result.Stats.Failed)
	assert.EqualError(t, result.Documents[0].Err, "boom")
	assert.Len(t, result.Paths(), 1)
}

func TestRunStopOnError(t *testing.T) {
	g := New(fakeRenderer{fail: "Jan"}, coerce.DefaultFormatter, logging.Discard())
	req := request(t, t.TempDir())
	req.ContinueOnError = false

	result, err := g.Run(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
	assert.Len(t, result.Documents, 1)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newGenerator().Run(ctx, request(t, t.TempDir()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Documents)
}

func TestRunIncompleteRequest(t *testing.T) {
	g := newGenerator()

	_, err := g.Run(context.Background(), Request{Data: loadData(t)})
	assert.ErrorIs(t, err, ErrNoTemplate)

	_, err = g.Run(context.Background(), Request{Template: letter()})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestContext(t *testing.T) {
	g := newGenerator()
	req := request(t, t.TempDir())

	data, err := g.Context(req, 2)
	require.NoError(t, err)
	assert.Equal(t, "Piet", data["Naam"])
	assert.Equal(t, "€10,00", data["row.Bedrag"])

	rowsAll := data["rows_all"].([]map[string]any)
	require.Len(t, rowsAll, 3)
	assert.Equal(t, "Totaal", rowsAll[2]["Naam"])
	assert.Equal(t, "", rowsAll[2]["Datum"])

	_, err = g.Context(req, 3)
	assert.Error(t, err)
}

func TestRenderSingle(t *testing.T) {
	tpl := document.New()
	tpl.AddParagraph("Beste {{ Naam }},")
	tpl.AddParagraph("{# interne notitie #}")
	tpl.AddParagraph("Ref {{ row.Ref }}")

	doc, err := newGenerator().RenderSingle(context.Background(), tpl,
		map[string]string{"Naam": "Jan", "row.Ref": "A-1"}, document.DefaultCleanupOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Beste Jan,", "Ref A-1"}, doc.Texts())
}
