// =============================================================================
// Docx Mail Merge - Post-Render Cleanup
// =============================================================================
//
// After rendering, a template leaves behind paragraphs that held nothing but
// a block tag ({% if %}, {% endfor %}, {# note #}) and table rows whose
// placeholders resolved to nothing. Cleanup removes them with predicates over
// the block tree. Only top-level body paragraphs and rows of top-level body
// tables are considered; headers and footers are left alone.
//
// =============================================================================

package document

import (
	"regexp"
	"strings"
)

// SignatureLine is the prefix of the underscore line used for signatures.
const SignatureLine = "_________________________"

// DefaultShortCellLimit is the cell length at or below which a cell counts as
// empty when deciding whether to drop a row.
const DefaultShortCellLimit = 5

var (
	loneTag     = regexp.MustCompile(`^\s*\{[#%].*?[#%]\}\s*$`)
	loneControl = regexp.MustCompile(`^\s*\{%\s*(macro|set|if|for|endmacro|endif|endfor).*?%\}\s*$`)
)

// ParagraphRule reports whether a paragraph should be removed.
type ParagraphRule func(p *Paragraph) bool

// RowRule reports whether a table row should be removed.
type RowRule func(r *Row) bool

// CleanupOptions selects which built-in rules run.
type CleanupOptions struct {
	// RemoveEmptyParagraphs drops paragraphs with only whitespace.
	RemoveEmptyParagraphs bool

	// RemoveTagParagraphs drops paragraphs holding a lone block or comment tag.
	RemoveTagParagraphs bool

	// RemoveBlankRows drops rows where every cell is empty, a signature line
	// or no longer than ShortCellLimit characters.
	RemoveBlankRows bool

	// ShortCellLimit is the short-cell threshold. Negative disables it.
	ShortCellLimit int
}

// DefaultCleanupOptions enables every rule.
func DefaultCleanupOptions() CleanupOptions {
	return CleanupOptions{
		RemoveEmptyParagraphs: true,
		RemoveTagParagraphs:   true,
		RemoveBlankRows:       true,
		ShortCellLimit:        DefaultShortCellLimit,
	}
}

// Cleaner applies removal rules to a document.
type Cleaner struct {
	Paragraphs []ParagraphRule
	Rows       []RowRule
}

// CleanupStats counts removed blocks.
type CleanupStats struct {
	ParagraphsRemoved int
	RowsRemoved       int
}

// NewCleaner builds a Cleaner from options.
func NewCleaner(opts CleanupOptions) *Cleaner {
	c := &Cleaner{}
	if opts.RemoveEmptyParagraphs {
		c.Paragraphs = append(c.Paragraphs, EmptyParagraph)
	}
	if opts.RemoveTagParagraphs {
		c.Paragraphs = append(c.Paragraphs, TagParagraph)
	}
	if opts.RemoveBlankRows {
		c.Rows = append(c.Rows, BlankRow(opts.ShortCellLimit))
	}
	return c
}

// EmptyParagraph matches whitespace-only paragraphs. Paragraphs holding a
// picture or embedded object are kept.
func EmptyParagraph(p *Paragraph) bool {
	return strings.TrimSpace(p.Text) == "" && !p.Markup.Objects
}

// TagParagraph matches paragraphs that are a single {% %} or {# #} tag.
func TagParagraph(p *Paragraph) bool {
	text := strings.TrimSpace(p.Text)
	return loneTag.MatchString(text) || loneControl.MatchString(text)
}

// BlankRow matches rows with no meaningful cell. A cell is meaningful when it
// is non-empty, not a signature line and longer than limit characters.
func BlankRow(limit int) RowRule {
	return func(r *Row) bool {
		for _, cell := range r.Cells {
			text := cell.Text()
			if text == "" || strings.HasPrefix(text, SignatureLine) {
				continue
			}
			if limit >= 0 && len([]rune(text)) <= limit {
				continue
			}
			return false
		}
		return true
	}
}

// Apply removes matching blocks from doc in place.
func (c *Cleaner) Apply(doc *Document) CleanupStats {
	var stats CleanupStats
	body := doc.Body()

	kept := body.Blocks[:0]
	for _, b := range body.Blocks {
		switch v := b.(type) {
		case *Paragraph:
			if c.removeParagraph(v) {
				stats.ParagraphsRemoved++
				continue
			}
		case *Table:
			stats.RowsRemoved += c.pruneRows(v)
		}
		kept = append(kept, b)
	}
	body.Blocks = kept
	return stats
}

func (c *Cleaner) removeParagraph(p *Paragraph) bool {
	for _, rule := range c.Paragraphs {
		if rule(p) {
			return true
		}
	}
	return false
}

func (c *Cleaner) pruneRows(t *Table) int {
	removed := 0
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		drop := false
		for _, rule := range c.Rows {
			if rule(row) {
				drop = true
				break
			}
		}
		if drop {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
	return removed
}

// Cleanup runs the rules selected by opts over doc.
func Cleanup(doc *Document, opts CleanupOptions) CleanupStats {
	return NewCleaner(opts).Apply(doc)
}
