// =============================================================================
// Docx Mail Merge - Template Renderer
// =============================================================================
//
// Renders a template document against a RenderContext using gonja (a Jinja2
// implementation). The document structure is kept: every paragraph run in
// the body, in table cells, in headers and in footers is rendered in place.
//
// PARAGRAPH RUNS:
//   Consecutive paragraphs are rendered as one template, joined by an
//   invisible separator, so control blocks such as {% if %} ... {% endif %}
//   may open in one paragraph and close in another. After rendering, the
//   output is split on the separator again. Each separator carries the index
//   of the paragraph that follows it, so a rendered paragraph keeps the
//   formatting of the template paragraph it came from. Paragraphs that end up
//   empty are left for the cleanup pass to remove. Tables break a run.
//
// TABLE ROWS:
//   A row whose non-empty cells hold only control tags ({% for %},
//   {% endfor %}, {% if %}, ...) turns the table into one template. Content
//   rows become row markers, so a row between {% for r in rows_all %} and
//   {% endfor %} is repeated per item and a row inside a false {% if %} is
//   dropped. Control rows never reach the output.
//
// =============================================================================

package render

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"

	"github.com/ginjaninja78/docx-mail-merge/internal/document"
	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

// Markers placed in a template source. They use invisible separator
// characters so they never collide with template text.
const (
	paragraphOpen  = "\u2063\u00b6"
	paragraphClose = "\u2063"
	rowOpen        = "\u2063\u00abrow "
	rowClose       = "\u2063\u00bb\u2063"
	cellSeparator  = "\u2063\u00a6\u2063"
)

var (
	paragraphMarker = regexp.MustCompile("\u2063\u00b6(\\d+)\u2063")
	rowMarker       = regexp.MustCompile("(?s)\u2063\u00abrow (\\d+):(.*?)\u2063\u00bb\u2063")
	anyMarker       = regexp.MustCompile("\u2063\u00b6\\d+\u2063|\u2063\u00abrow \\d+:|\u2063\u00bb\u2063|\u2063\u00a6\u2063")

	// controlTags matches cell text made of block tags only.
	controlTags = regexp.MustCompile(`^(?:\{%-?\s*(?:for|endfor|if|elif|else|endif)\b(?:[^%]|%[^}])*%\}\s*)+$`)
)

// Renderer produces a rendered copy of a template document.
type Renderer interface {
	Render(ctx context.Context, tpl *document.Document, data types.RenderContext) (*document.Document, error)
}

// RenderError reports a paragraph run that failed to compile or execute.
type RenderError struct {
	Part   string
	Source string
	Err    error
}

func (e *RenderError) Error() string {
	src := strings.TrimPrefix(anyMarker.ReplaceAllString(e.Source, " / "), " / ")
	if len(src) > 80 {
		src = src[:77] + "..."
	}
	return fmt.Sprintf("failed to render %s %q: %v", e.Part, src, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// =============================================================================
// GONJA RENDERER
// =============================================================================

// GonjaRenderer renders documents with gonja. Compiled templates are cached
// by source text, so rendering many rows of the same template compiles each
// paragraph run once. It is safe for concurrent use.
type GonjaRenderer struct {
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*exec.Template
}

// NewGonjaRenderer creates a renderer. A nil logger uses slog.Default().
func NewGonjaRenderer(logger *slog.Logger) *GonjaRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GonjaRenderer{
		logger: logger,
		cache:  make(map[string]*exec.Template),
	}
}

// Render renders every part of tpl with data. tpl is not modified.
//
// PARAMETERS:
//   - ctx: Checked before each part is rendered.
//   - tpl: The template document.
//   - data: The render context for one document.
//
// RETURNS:
//   - A new document with rendered text.
//   - A *RenderError when a paragraph run fails, or the context error.
func (r *GonjaRenderer) Render(ctx context.Context, tpl *document.Document, data types.RenderContext) (*document.Document, error) {
	out := tpl.Clone()
	vars := Expand(data)

	for _, part := range out.Parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blocks, err := r.renderBlocks(part.Blocks, vars, part.Kind.String())
		if err != nil {
			return nil, err
		}
		part.Blocks = blocks
	}
	return out, nil
}

// renderBlocks renders a block list, grouping consecutive paragraphs into
// runs and descending into tables.
func (r *GonjaRenderer) renderBlocks(blocks []document.Block, vars map[string]any, part string) ([]document.Block, error) {
	var (
		out []document.Block
		run []*document.Paragraph
	)

	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		rendered, err := r.renderRun(run, vars, part)
		if err != nil {
			return err
		}
		out = append(out, rendered...)
		run = nil
		return nil
	}

	for _, b := range blocks {
		switch v := b.(type) {
		case *document.Paragraph:
			run = append(run, v)
		case *document.Table:
			if err := flush(); err != nil {
				return nil, err
			}
			tbl, err := r.renderTable(v, vars, part+" table")
			if err != nil {
				return nil, err
			}
			out = append(out, tbl)
		default:
			if err := flush(); err != nil {
				return nil, err
			}
			out = append(out, b)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// renderRun renders one paragraph run and splits the result.
func (r *GonjaRenderer) renderRun(paras []*document.Paragraph, vars map[string]any, part string) ([]document.Block, error) {
	source := joinParagraphs(paras)
	if !HasTemplateSyntax(source) {
		out := make([]document.Block, len(paras))
		for i, p := range paras {
			out[i] = p
		}
		return out, nil
	}

	rendered, err := r.RenderString(source, vars)
	if err != nil {
		return nil, &RenderError{Part: part, Source: source, Err: err}
	}

	chunks := splitParagraphs(rendered)
	out := make([]document.Block, len(chunks))
	for i, c := range chunks {
		out[i] = c.paragraph(paras)
	}
	return out, nil
}

// =============================================================================
// TABLES
// =============================================================================

// renderTable renders the cells of t in place, or rebuilds t when it has
// control rows.
func (r *GonjaRenderer) renderTable(t *document.Table, vars map[string]any, part string) (*document.Table, error) {
	if hasControlRows(t) {
		return r.renderRowTemplate(t, vars, part)
	}
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			rendered, err := r.renderBlocks(cell.Blocks, vars, part)
			if err != nil {
				return nil, err
			}
			cell.Blocks = rendered
		}
	}
	return t, nil
}

// renderRowTemplate renders t as a single template and builds a new table
// from the rows that come out. t is not modified.
func (r *GonjaRenderer) renderRowTemplate(t *document.Table, vars map[string]any, part string) (*document.Table, error) {
	var sb strings.Builder
	for i, row := range t.Rows {
		if tags, ok := controlRow(row); ok {
			sb.WriteString(tags)
			continue
		}
		sb.WriteString(rowOpen)
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte(':')
		for c, cell := range row.Cells {
			if c > 0 {
				sb.WriteString(cellSeparator)
			}
			sb.WriteString(joinParagraphs(cellParagraphs(cell)))
		}
		sb.WriteString(rowClose)
	}

	source := sb.String()
	rendered, err := r.RenderString(source, vars)
	if err != nil {
		return nil, &RenderError{Part: part, Source: source, Err: err}
	}

	out := &document.Table{Markup: t.Markup}
	for _, m := range rowMarker.FindAllStringSubmatch(rendered, -1) {
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx >= len(t.Rows) {
			continue
		}
		row, err := r.fillRow(t.Rows[idx], strings.Split(m[2], cellSeparator), vars, part)
		if err != nil {
			return nil, err
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// fillRow builds a copy of tpl holding the rendered cell texts. Nested
// tables are rendered on their own, with the document variables.
func (r *GonjaRenderer) fillRow(tpl *document.Row, texts []string, vars map[string]any, part string) (*document.Row, error) {
	row := &document.Row{Markup: tpl.Markup}
	for c, tplCell := range tpl.Cells {
		cell := &document.Cell{Markup: tplCell.Markup}
		paras := cellParagraphs(tplCell)

		// nested tables and the number of paragraphs before each
		type nestedTable struct {
			table  *document.Table
			before int
		}
		var nested []nestedTable
		count := 0
		for _, b := range tplCell.Blocks {
			switch v := b.(type) {
			case *document.Paragraph:
				count++
			case *document.Table:
				nested = append(nested, nestedTable{table: v, before: count})
			}
		}

		text := ""
		if c < len(texts) {
			text = texts[c]
		}

		next := 0
		addTables := func(upTo int) error {
			for ; next < len(nested) && nested[next].before <= upTo; next++ {
				tbl, err := r.renderTable(document.CloneTable(nested[next].table), vars, part+" table")
				if err != nil {
					return err
				}
				cell.Blocks = append(cell.Blocks, tbl)
			}
			return nil
		}
		for _, chunk := range splitParagraphs(text) {
			if err := addTables(chunk.origin); err != nil {
				return nil, err
			}
			cell.Blocks = append(cell.Blocks, chunk.paragraph(paras))
		}
		if err := addTables(len(paras)); err != nil {
			return nil, err
		}
		row.Cells = append(row.Cells, cell)
	}
	return row, nil
}

func hasControlRows(t *document.Table) bool {
	for _, row := range t.Rows {
		if _, ok := controlRow(row); ok {
			return true
		}
	}
	return false
}

// controlRow reports whether every non-empty cell of row holds only block
// tags, and returns the tags in cell order.
func controlRow(row *document.Row) (string, bool) {
	var tags strings.Builder
	for _, cell := range row.Cells {
		text := strings.TrimSpace(cell.Text())
		if text == "" {
			continue
		}
		if !controlTags.MatchString(text) {
			return "", false
		}
		tags.WriteString(text)
	}
	return tags.String(), tags.Len() > 0
}

// cellParagraphs returns the top-level paragraphs of a cell.
func cellParagraphs(cell *document.Cell) []*document.Paragraph {
	var out []*document.Paragraph
	for _, b := range cell.Blocks {
		if p, ok := b.(*document.Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// PARAGRAPH MARKERS
// =============================================================================

// joinParagraphs joins paragraph texts, putting a marker with the index of
// the next paragraph between each pair.
func joinParagraphs(paras []*document.Paragraph) string {
	var sb strings.Builder
	for i, p := range paras {
		if i > 0 {
			sb.WriteString(paragraphOpen)
			sb.WriteString(strconv.Itoa(i))
			sb.WriteString(paragraphClose)
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// renderedParagraph is one paragraph of rendered output and the index of the
// template paragraph it came from.
type renderedParagraph struct {
	origin int
	text   string
}

func splitParagraphs(s string) []renderedParagraph {
	var out []renderedParagraph
	origin, last := 0, 0
	for _, loc := range paragraphMarker.FindAllStringSubmatchIndex(s, -1) {
		out = append(out, renderedParagraph{origin: origin, text: s[last:loc[0]]})
		origin, _ = strconv.Atoi(s[loc[2]:loc[3]])
		last = loc[1]
	}
	return append(out, renderedParagraph{origin: origin, text: s[last:]})
}

// paragraph builds the output paragraph, carrying the markup of its origin.
func (c renderedParagraph) paragraph(origins []*document.Paragraph) *document.Paragraph {
	p := &document.Paragraph{Text: c.text}
	if c.origin < len(origins) {
		p.Markup = origins[c.origin].Markup
	}
	return p
}

// RenderString renders a single template string. vars should already be
// expanded with Expand when dotted keys are used.
func (r *GonjaRenderer) RenderString(source string, vars map[string]any) (string, error) {
	tpl, err := r.compile(source)
	if err != nil {
		return "", err
	}
	out, err := tpl.ExecuteToString(exec.NewContext(vars))
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return out, nil
}

func (r *GonjaRenderer) compile(source string) (*exec.Template, error) {
	r.mu.RLock()
	tpl, ok := r.cache[source]
	r.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	tpl, err := gonja.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile template: %w", err)
	}

	r.mu.Lock()
	r.cache[source] = tpl
	r.mu.Unlock()
	r.logger.Debug("compiled template", slog.Int("length", len(source)))
	return tpl, nil
}

// CacheSize returns the number of compiled templates held.
func (r *GonjaRenderer) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// =============================================================================
// HELPERS
// =============================================================================

// HasTemplateSyntax reports whether text contains a variable, block or
// comment marker.
func HasTemplateSyntax(text string) bool {
	return strings.Contains(text, "{{") ||
		strings.Contains(text, "{%") ||
		strings.Contains(text, "{#")
}

// Expand returns a copy of data in which dotted keys are also available as
// nested maps: "row.Naam" becomes vars["row"]["Naam"]. Flat keys are kept.
// A dotted key never overwrites a non-map value of the same prefix.
func Expand(data types.RenderContext) map[string]any {
	vars := make(map[string]any, len(data))
	for k, v := range data {
		vars[k] = v
	}

	// prefixes whose nested map belongs to vars and may be written to
	owned := make(map[string]bool)
	for k, v := range data {
		if !strings.Contains(k, ".") {
			continue
		}
		path := strings.Split(k, ".")
		node := vars
		ok := true
		for i, seg := range path[:len(path)-1] {
			prefix := strings.Join(path[:i+1], ".")
			child, exists := node[seg]
			if !exists {
				m := make(map[string]any)
				node[seg] = m
				owned[prefix] = true
				node = m
				continue
			}
			m, isMap := child.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			if !owned[prefix] {
				cp := make(map[string]any, len(m)+1)
				for mk, mv := range m {
					cp[mk] = mv
				}
				node[seg] = cp
				owned[prefix] = true
				m = cp
			}
			node = m
		}
		if ok {
			node[path[len(path)-1]] = v
		}
	}
	return vars
}
