package render

import (
	"strings"

	"github.com/ginjaninja78/docx-mail-merge/internal/document"
	"github.com/ginjaninja78/docx-mail-merge/internal/output"
	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

// Preview renders the body of tpl as markdown. Each paragraph is rendered on
// its own; a paragraph that fails to render is shown as its raw text, so a
// broken field never hides the rest of the preview. Tables with control
// rows are rendered whole, or shown raw when that fails. Empty paragraphs are
// dropped.
func (r *GonjaRenderer) Preview(tpl *document.Document, data types.RenderContext) string {
	vars := Expand(data)
	body := tpl.Clone().Body()
	return output.Markdown(r.previewBlocks(body.Blocks, vars))
}

func (r *GonjaRenderer) previewBlocks(blocks []document.Block, vars map[string]any) []document.Block {
	var out []document.Block
	for _, b := range blocks {
		switch v := b.(type) {
		case *document.Paragraph:
			text := r.previewText(v.Text, vars)
			if strings.TrimSpace(text) == "" {
				continue
			}
			out = append(out, &document.Paragraph{Text: text})
		case *document.Table:
			if hasControlRows(v) {
				tbl, err := r.renderRowTemplate(v, vars, "preview table")
				if err == nil {
					out = append(out, tbl)
					continue
				}
				r.logger.Debug("preview fallback to raw rows", "error", err)
			}
			for _, row := range v.Rows {
				for _, cell := range row.Cells {
					cell.Blocks = r.previewBlocks(cell.Blocks, vars)
				}
			}
			out = append(out, v)
		}
	}
	return out
}

func (r *GonjaRenderer) previewText(text string, vars map[string]any) string {
	if !HasTemplateSyntax(text) {
		return text
	}
	rendered, err := r.RenderString(text, vars)
	if err != nil {
		r.logger.Debug("preview fallback to raw text", "error", err)
		return text
	}
	return rendered
}
