// =============================================================================
// Docx Mail Merge - Document Model
// =============================================================================
//
// A template is reduced to a tree of blocks that is independent of any file
// format:
//
//   Document
//   └── Part (body, header, footer)
//       └── Block
//           ├── Paragraph (text)
//           └── Table
//               └── Row
//                   └── Cell
//                       └── Block ...
//
// Readers (docx) build the tree, the renderer replaces paragraph text, the
// cleanup pass removes blocks, and writers serialize what is left.
//
// Blocks read from a file keep their source markup (Markup) and the document
// keeps the source package, so a writer for the same format can reproduce the
// template's formatting around the rendered text.
//
// =============================================================================

package document

import "strings"

// =============================================================================
// PART KINDS
// =============================================================================

// PartKind identifies where a part sits in the source document.
type PartKind int

const (
	// PartBody is the main document flow.
	PartBody PartKind = iota

	// PartHeader is a page header.
	PartHeader

	// PartFooter is a page footer.
	PartFooter
)

// String returns the lower-case kind name.
func (k PartKind) String() string {
	switch k {
	case PartHeader:
		return "header"
	case PartFooter:
		return "footer"
	default:
		return "body"
	}
}

// =============================================================================
// BLOCKS
// =============================================================================

// Block is either a *Paragraph or a *Table.
type Block interface {
	block()
}

// Markup is the source markup of a block. Writers for the format the block
// was read from reuse it; it is empty for blocks built in code.
type Markup struct {
	// Raw is the complete paragraph element as read.
	Raw string

	// Text is the paragraph text at read time. Raw is only valid while the
	// paragraph still holds this text.
	Text string

	// Props is the properties element of the paragraph, table, row or cell.
	Props string

	// RunProps is the properties element of the first text run.
	RunProps string

	// Grid is the column grid of a table.
	Grid string

	// Objects is set when the paragraph holds drawings or embedded objects.
	Objects bool
}

// Paragraph is a run of text. Tabs and line breaks are kept as "\t" and "\n".
type Paragraph struct {
	Text   string
	Markup Markup
}

func (*Paragraph) block() {}

// Table is a grid of rows.
type Table struct {
	Rows   []*Row
	Markup Markup
}

func (*Table) block() {}

// Row is a table row.
type Row struct {
	Cells  []*Cell
	Markup Markup
}

// Cell holds nested blocks, usually paragraphs.
type Cell struct {
	Blocks []Block
	Markup Markup
}

// Text joins the non-blank paragraph texts of the cell with a space.
func (c *Cell) Text() string {
	var parts []string
	for _, b := range c.Blocks {
		if p, ok := b.(*Paragraph); ok && strings.TrimSpace(p.Text) != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Part is one text region of the document.
type Part struct {
	Kind   PartKind
	Name   string
	Blocks []Block

	// Path is the package entry the part was read from.
	Path string

	// Head and Tail are the source markup before and after the blocks.
	Head string
	Tail string
}

// Document is the parsed template or a rendered copy of it.
type Document struct {
	Parts []*Part

	// Package is the source file the document was read from. It is shared
	// between clones and never modified.
	Package []byte
}

// New returns a document with an empty body.
func New() *Document {
	return &Document{Parts: []*Part{{Kind: PartBody, Name: "body"}}}
}

// Body returns the body part, creating it when missing.
func (d *Document) Body() *Part {
	for _, p := range d.Parts {
		if p.Kind == PartBody {
			return p
		}
	}
	body := &Part{Kind: PartBody, Name: "body"}
	d.Parts = append([]*Part{body}, d.Parts...)
	return body
}

// AddParagraph appends a paragraph to the body.
func (d *Document) AddParagraph(text string) *Paragraph {
	p := &Paragraph{Text: text}
	body := d.Body()
	body.Blocks = append(body.Blocks, p)
	return p
}

// AddTable appends a table built from plain cell texts to the body.
func (d *Document) AddTable(rows [][]string) *Table {
	t := NewTable(rows)
	body := d.Body()
	body.Blocks = append(body.Blocks, t)
	return t
}

// NewTable builds a table whose cells each hold one paragraph.
func NewTable(rows [][]string) *Table {
	t := &Table{}
	for _, r := range rows {
		row := &Row{}
		for _, text := range r {
			row.Cells = append(row.Cells, &Cell{Blocks: []Block{&Paragraph{Text: text}}})
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// =============================================================================
// TRAVERSAL
// =============================================================================

// Walk calls fn for every paragraph. Within each part, and within each cell,
// top-level paragraphs are visited before the paragraphs of tables. Parts are
// visited in document order (body first, then headers and footers).
func (d *Document) Walk(fn func(p *Paragraph)) {
	for _, part := range d.Parts {
		walkBlocks(part.Blocks, fn)
	}
}

func walkBlocks(blocks []Block, fn func(p *Paragraph)) {
	for _, b := range blocks {
		if p, ok := b.(*Paragraph); ok {
			fn(p)
		}
	}
	for _, b := range blocks {
		if t, ok := b.(*Table); ok {
			for _, row := range t.Rows {
				for _, cell := range row.Cells {
					walkBlocks(cell.Blocks, fn)
				}
			}
		}
	}
}

// Texts returns every paragraph text in Walk order.
func (d *Document) Texts() []string {
	var out []string
	d.Walk(func(p *Paragraph) {
		out = append(out, p.Text)
	})
	return out
}

// =============================================================================
// COPYING
// =============================================================================

// Clone returns a deep copy, so a template can be rendered once per row.
func (d *Document) Clone() *Document {
	out := &Document{Parts: make([]*Part, len(d.Parts)), Package: d.Package}
	for i, p := range d.Parts {
		cp := *p
		cp.Blocks = CloneBlocks(p.Blocks)
		out.Parts[i] = &cp
	}
	return out
}

// CloneBlocks deep-copies a block list.
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		switch v := b.(type) {
		case *Paragraph:
			cp := *v
			out[i] = &cp
		case *Table:
			out[i] = CloneTable(v)
		}
	}
	return out
}

// CloneTable deep-copies a table.
func CloneTable(t *Table) *Table {
	out := &Table{Rows: make([]*Row, len(t.Rows)), Markup: t.Markup}
	for r, row := range t.Rows {
		out.Rows[r] = CloneRow(row)
	}
	return out
}

// CloneRow deep-copies a table row.
func CloneRow(row *Row) *Row {
	out := &Row{Cells: make([]*Cell, len(row.Cells)), Markup: row.Markup}
	for c, cell := range row.Cells {
		out.Cells[c] = &Cell{Blocks: CloneBlocks(cell.Blocks), Markup: cell.Markup}
	}
	return out
}

// Source provides a parsed template. Implementations read a file format and
// return a fresh tree on every call.
type Source interface {
	Load() (*Document, error)
}
