// =============================================================================
// Docx Mail Merge - DOCX Writer
// =============================================================================
//
// Writes a block tree as a Word package.
//
// A document read from a .docx is written back into its own package: every
// entry is copied unchanged except the body, header and footer parts, whose
// blocks are regenerated between the part's original head and tail. A
// paragraph whose text did not change is copied verbatim; a changed paragraph
// keeps its w:pPr and the w:rPr of its first text run.
//
// A document built in code becomes a minimal package with default styling.
//
// MINIMAL PACKAGE LAYOUT:
//   [Content_Types].xml
//   _rels/.rels
//   word/document.xml
//   word/_rels/document.xml.rels   (only with headers or footers)
//   word/headerN.xml, word/footerN.xml
//
// =============================================================================

package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/docx-mail-merge/internal/document"
)

const (
	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relTypeFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	namespaceR            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	contentTypeMain   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	contentTypeHeader = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	contentTypeFooter = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"

	// defaultTableProps draws single borders, so tables built in code need no
	// styles part.
	defaultTableProps = `<w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`</w:tblBorders></w:tblPr>`
)

// WriteFile saves doc as a .docx file.
func WriteFile(filePath string, doc *document.Document) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	if err := Write(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write serializes doc as a Word package to w.
func Write(w io.Writer, doc *document.Document) error {
	if len(doc.Package) > 0 {
		return writeIntoPackage(w, doc)
	}
	return writeMinimal(w, doc)
}

// writeIntoPackage copies the source package and regenerates the parts that
// were read into doc.
func writeIntoPackage(w io.Writer, doc *document.Document) error {
	zr, err := zip.NewReader(bytes.NewReader(doc.Package), int64(len(doc.Package)))
	if err != nil {
		return fmt.Errorf("failed to open source package: %w", err)
	}

	parts := make(map[string]*document.Part, len(doc.Parts))
	for _, p := range doc.Parts {
		if p.Path != "" && p.Head != "" {
			parts[p.Path] = p
		}
	}

	zw := zip.NewWriter(w)
	for _, f := range zr.File {
		part, ok := parts[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("failed to copy %s: %w", f.Name, err)
			}
			continue
		}

		var sb strings.Builder
		sb.WriteString(part.Head)
		writeBlocks(&sb, part.Blocks)
		if part.Kind != document.PartBody && len(part.Blocks) == 0 {
			sb.WriteString(`<w:p/>`)
		}
		sb.WriteString(part.Tail)
		if err := writeEntry(zw, f.Name, sb.String()); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish docx package: %w", err)
	}
	return nil
}

// writeMinimal builds a new package around doc.
func writeMinimal(w io.Writer, doc *document.Document) error {
	zw := zip.NewWriter(w)

	type extraPart struct {
		id, file, relType, contentType, root string
		part                                 *document.Part
	}
	var extras []extraPart
	headers, footers := 0, 0
	for _, p := range doc.Parts {
		switch p.Kind {
		case document.PartHeader:
			headers++
			extras = append(extras, extraPart{
				file: fmt.Sprintf("header%d.xml", headers), relType: relTypeHeader,
				contentType: contentTypeHeader, root: "hdr", part: p,
			})
		case document.PartFooter:
			footers++
			extras = append(extras, extraPart{
				file: fmt.Sprintf("footer%d.xml", footers), relType: relTypeFooter,
				contentType: contentTypeFooter, root: "ftr", part: p,
			})
		}
	}
	for i := range extras {
		extras[i].id = fmt.Sprintf("rId%d", i+1)
	}

	var types strings.Builder
	types.WriteString(xml.Header)
	types.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	types.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	types.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	types.WriteString(`<Override PartName="/word/document.xml" ContentType="` + contentTypeMain + `"/>`)
	for _, e := range extras {
		types.WriteString(`<Override PartName="/word/` + e.file + `" ContentType="` + e.contentType + `"/>`)
	}
	types.WriteString(`</Types>`)
	if err := writeEntry(zw, "[Content_Types].xml", types.String()); err != nil {
		return err
	}

	rels := xml.Header +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + relTypeOfficeDocument + `" Target="word/document.xml"/>` +
		`</Relationships>`
	if err := writeEntry(zw, "_rels/.rels", rels); err != nil {
		return err
	}

	var body strings.Builder
	body.WriteString(xml.Header)
	body.WriteString(`<w:document xmlns:w="` + NamespaceW + `" xmlns:r="` + namespaceR + `"><w:body>`)
	writeBlocks(&body, doc.Body().Blocks)
	body.WriteString(`<w:sectPr>`)
	seenHeader, seenFooter := false, false
	for _, e := range extras {
		// One default reference per kind; extra parts stay in the package.
		if e.root == "hdr" && !seenHeader {
			body.WriteString(`<w:headerReference w:type="default" r:id="` + e.id + `"/>`)
			seenHeader = true
		}
		if e.root == "ftr" && !seenFooter {
			body.WriteString(`<w:footerReference w:type="default" r:id="` + e.id + `"/>`)
			seenFooter = true
		}
	}
	body.WriteString(`</w:sectPr></w:body></w:document>`)
	if err := writeEntry(zw, "word/document.xml", body.String()); err != nil {
		return err
	}

	if len(extras) > 0 {
		var docRels strings.Builder
		docRels.WriteString(xml.Header)
		docRels.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
		for _, e := range extras {
			docRels.WriteString(`<Relationship Id="` + e.id + `" Type="` + e.relType + `" Target="` + e.file + `"/>`)
		}
		docRels.WriteString(`</Relationships>`)
		if err := writeEntry(zw, "word/_rels/document.xml.rels", docRels.String()); err != nil {
			return err
		}
	}

	for _, e := range extras {
		var part strings.Builder
		part.WriteString(xml.Header)
		part.WriteString(`<w:` + e.root + ` xmlns:w="` + NamespaceW + `" xmlns:r="` + namespaceR + `">`)
		writeBlocks(&part, e.part.Blocks)
		if len(e.part.Blocks) == 0 {
			part.WriteString(`<w:p/>`)
		}
		part.WriteString(`</w:` + e.root + `>`)
		if err := writeEntry(zw, "word/"+e.file, part.String()); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish docx package: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name, content string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := io.WriteString(w, content); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func writeBlocks(sb *strings.Builder, blocks []document.Block) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *document.Paragraph:
			writeParagraph(sb, v)
		case *document.Table:
			writeTable(sb, v)
		}
	}
}

// writeParagraph copies an unchanged paragraph from its source markup. Other
// paragraphs get one run per text segment, with tabs and line breaks as their
// own elements.
func writeParagraph(sb *strings.Builder, p *document.Paragraph) {
	if p.Markup.Raw != "" && p.Text == p.Markup.Text {
		sb.WriteString(p.Markup.Raw)
		return
	}

	sb.WriteString(`<w:p>`)
	sb.WriteString(p.Markup.Props)
	if p.Text != "" {
		sb.WriteString(`<w:r>`)
		sb.WriteString(p.Markup.RunProps)
		var seg strings.Builder
		flush := func() {
			if seg.Len() == 0 {
				return
			}
			sb.WriteString(`<w:t xml:space="preserve">`)
			xml.EscapeText(sb, []byte(seg.String()))
			sb.WriteString(`</w:t>`)
			seg.Reset()
		}
		for _, r := range p.Text {
			switch r {
			case '\t':
				flush()
				sb.WriteString(`<w:tab/>`)
			case '\n':
				flush()
				sb.WriteString(`<w:br/>`)
			default:
				seg.WriteRune(r)
			}
		}
		flush()
		sb.WriteString(`</w:r>`)
	}
	sb.WriteString(`</w:p>`)
}

func writeTable(sb *strings.Builder, t *document.Table) {
	sb.WriteString(`<w:tbl>`)
	if t.Markup.Props != "" {
		sb.WriteString(t.Markup.Props)
	} else {
		sb.WriteString(defaultTableProps)
	}
	sb.WriteString(t.Markup.Grid)
	for _, row := range t.Rows {
		sb.WriteString(`<w:tr>`)
		sb.WriteString(row.Markup.Props)
		for _, cell := range row.Cells {
			sb.WriteString(`<w:tc>`)
			sb.WriteString(cell.Markup.Props)
			writeBlocks(sb, cell.Blocks)
			// A cell must end with a paragraph.
			if n := len(cell.Blocks); n == 0 {
				sb.WriteString(`<w:p/>`)
			} else if _, ok := cell.Blocks[n-1].(*document.Paragraph); !ok {
				sb.WriteString(`<w:p/>`)
			}
			sb.WriteString(`</w:tc>`)
		}
		sb.WriteString(`</w:tr>`)
	}
	sb.WriteString(`</w:tbl>`)
}
