// =============================================================================
// Docx Mail Merge - Output Writer
// =============================================================================
//
// Serializes a rendered document. Three formats are supported:
//
//   docx : a Word package with the rendered text structure
//   md   : markdown, tables as pipe tables
//   txt  : plain text, table cells separated by tabs
//
// For md and txt, header parts are written before the body and footer parts
// after it when IncludeHeaders is set.
//
// =============================================================================

package output

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/docx-mail-merge/internal/document"
	"github.com/ginjaninja78/docx-mail-merge/internal/docx"
)

// =============================================================================
// OUTPUT OPTIONS
// =============================================================================

// Format is an output file format.
type Format string

const (
	FormatDocx     Format = "docx"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat validates a format name. "markdown" and "text" are accepted
// as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "docx":
		return FormatDocx, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Options contains options for serialization.
type Options struct {
	// Format selects the serializer.
	// Default: docx
	Format Format

	// IncludeHeaders writes header and footer parts in md and txt output.
	// Default: true
	IncludeHeaders bool

	// PartSeparator separates header, body and footer in md and txt output.
	// Default: "---"
	PartSeparator string
}

// DefaultOptions returns the default serialization options.
func DefaultOptions() Options {
	return Options{
		Format:         FormatDocx,
		IncludeHeaders: true,
		PartSeparator:  "---",
	}
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate serializes doc.
//
// PARAMETERS:
//   - doc: The rendered document.
//   - opts: Serialization options.
//
// RETURNS:
//   - The file content.
//   - An error for unknown formats or a failed docx package.
func Generate(doc *document.Document, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatDocx, "":
		var buf bytes.Buffer
		if err := docx.Write(&buf, doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatMarkdown:
		return []byte(withParts(doc, opts, Markdown)), nil
	case FormatText:
		return []byte(withParts(doc, opts, PlainText)), nil
	}
	return nil, fmt.Errorf("unknown output format %q", opts.Format)
}

// WriteFile serializes doc to path.
func WriteFile(path string, doc *document.Document, opts Options) error {
	data, err := Generate(doc, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// withParts renders headers, body and footers with render and joins them.
func withParts(doc *document.Document, opts Options, render func([]document.Block) string) string {
	body := render(doc.Body().Blocks)
	if !opts.IncludeHeaders {
		return body
	}

	var headers, footers []string
	for _, p := range doc.Parts {
		text := render(p.Blocks)
		if strings.TrimSpace(text) == "" {
			continue
		}
		switch p.Kind {
		case document.PartHeader:
			headers = append(headers, text)
		case document.PartFooter:
			footers = append(footers, text)
		}
	}

	sep := opts.PartSeparator
	if sep == "" {
		sep = "---"
	}
	var sections []string
	sections = append(sections, headers...)
	sections = append(sections, body)
	sections = append(sections, footers...)
	return strings.Join(sections, "\n"+sep+"\n\n")
}

// =============================================================================
// MARKDOWN
// =============================================================================

// Markdown renders blocks as markdown. Paragraphs are separated by blank
// lines. Tables use the first row as header and skip blank rows.
func Markdown(blocks []document.Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch v := b.(type) {
		case *document.Paragraph:
			sb.WriteString(v.Text)
			sb.WriteString("\n\n")
		case *document.Table:
			if table := markdownTable(v); table != "" {
				sb.WriteString(table)
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

func markdownTable(t *document.Table) string {
	var rows [][]string
	for _, row := range t.Rows {
		cells := make([]string, len(row.Cells))
		blank := true
		for i, cell := range row.Cells {
			text := cell.Text()
			if text != "" {
				blank = false
			}
			cells[i] = escapeCell(text)
		}
		if !blank {
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow(&sb, rows[0])
	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&sb, sep)
	for _, r := range rows[1:] {
		writeRow(&sb, r)
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("| ")
	sb.WriteString(strings.Join(cells, " | "))
	sb.WriteString(" |\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

// =============================================================================
// PLAIN TEXT
// =============================================================================

// PlainText renders blocks as text. Table rows become tab separated lines.
func PlainText(blocks []document.Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch v := b.(type) {
		case *document.Paragraph:
			sb.WriteString(v.Text)
			sb.WriteString("\n")
		case *document.Table:
			for _, row := range v.Rows {
				cells := make([]string, len(row.Cells))
				for i, cell := range row.Cells {
					cells[i] = cell.Text()
				}
				sb.WriteString(strings.Join(cells, "\t"))
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
