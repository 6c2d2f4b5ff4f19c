// =============================================================================
// Docx Mail Merge - DOCX Template Reader
// =============================================================================
//
// Reads a .docx package into the block model: paragraphs (runs joined, tabs
// and breaks as "\t" / "\n"), tables, rows and cells. The source markup of
// every block is kept alongside its text so the writer can put rendered text
// back into the template's own XML:
//
//   paragraph : the whole w:p, its w:pPr and the w:rPr of the first text run
//   table     : w:tblPr and w:tblGrid
//   row, cell : w:trPr, w:tcPr
//   part      : the XML before and after the blocks (incl. the body w:sectPr)
//
// PARTS READ:
//   - word/document.xml          : body
//   - word/headerN.xml           : page headers
//   - word/footerN.xml           : page footers
//
// Content controls (w:sdt) and custom XML wrappers are read through. Text
// boxes inside a paragraph are folded into that paragraph.
//
// =============================================================================

package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/docx-mail-merge/internal/document"
)

// NamespaceW is the WordprocessingML main namespace.
const NamespaceW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// ErrNotDocx is returned when the input is not a Word package.
var ErrNotDocx = errors.New("not a docx document")

var partPattern = regexp.MustCompile(`^word/(header|footer)(\d*)\.xml$`)

// File is a document.Source backed by a .docx file on disk.
type File struct {
	Path string
}

// Load parses the file.
func (f File) Load() (*document.Document, error) {
	return Open(f.Path)
}

// Bytes is a document.Source backed by an in-memory .docx package.
type Bytes []byte

// Load parses the package.
func (b Bytes) Load() (*document.Document, error) {
	return Read(bytes.NewReader(b), int64(len(b)))
}

// Open reads a .docx file from disk.
func Open(filePath string) (*document.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return Bytes(data).Load()
}

// Read parses a .docx package.
//
// PARAMETERS:
//   - r: The package bytes.
//   - size: The package length.
//
// RETURNS:
//   - The document with the body first, then headers and footers.
//   - ErrNotDocx when r is not a zip or lacks word/document.xml.
func Read(r io.ReaderAt, size int64) (*document.Document, error) {
	pkg, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, fmt.Errorf("failed to read package: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(pkg), size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	var body *zip.File
	var extra []*zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
		} else if partPattern.MatchString(f.Name) {
			extra = append(extra, f)
		}
	}
	if body == nil {
		return nil, fmt.Errorf("%w: word/document.xml missing", ErrNotDocx)
	}
	sortParts(extra)

	doc := &document.Document{Package: pkg}

	part, err := readPart(body, "body")
	if err != nil {
		return nil, err
	}
	part.Kind = document.PartBody
	part.Name = "body"
	doc.Parts = append(doc.Parts, part)

	for _, f := range extra {
		m := partPattern.FindStringSubmatch(f.Name)
		kind := document.PartHeader
		root := "hdr"
		if m[1] == "footer" {
			kind = document.PartFooter
			root = "ftr"
		}
		part, err := readPart(f, root)
		if err != nil {
			return nil, err
		}
		part.Kind = kind
		part.Name = strings.TrimSuffix(path.Base(f.Name), ".xml")
		doc.Parts = append(doc.Parts, part)
	}

	return doc, nil
}

// sortParts orders header1, footer1, header2, footer2, ...
func sortParts(files []*zip.File) {
	key := func(f *zip.File) (int, int) {
		m := partPattern.FindStringSubmatch(f.Name)
		n, _ := strconv.Atoi(m[2])
		kind := 0
		if m[1] == "footer" {
			kind = 1
		}
		return n, kind
	}
	sort.SliceStable(files, func(i, j int) bool {
		ni, ki := key(files[i])
		nj, kj := key(files[j])
		if ni != nj {
			return ni < nj
		}
		return ki < kj
	})
}

func readPart(f *zip.File, root string) (*document.Part, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}

	p := &parser{dec: xml.NewDecoder(bytes.NewReader(data)), data: data}
	part, err := p.part(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.Name, err)
	}
	part.Path = f.Name
	return part, nil
}

// =============================================================================
// XML PARSER
// =============================================================================

type parser struct {
	dec  *xml.Decoder
	data []byte

	// lastEnd is the offset of the end tag that closed the latest block list.
	lastEnd int64
}

func isW(name xml.Name, local string) bool {
	return name.Space == NamespaceW && name.Local == local
}

// raw returns the source text from start to the current decoder position.
func (p *parser) raw(start int64) string {
	return string(p.data[start:p.dec.InputOffset()])
}

// transparent elements wrap blocks without adding structure.
func transparent(name xml.Name) bool {
	if name.Space != NamespaceW {
		return false
	}
	switch name.Local {
	case "sdt", "sdtContent", "customXml", "smartTag", "ins":
		return true
	}
	return false
}

// object elements carry content that has no text.
func object(name xml.Name) bool {
	return isW(name, "drawing") || isW(name, "pict") || isW(name, "object")
}

// part finds the block container (w:body for the document, the root element
// for headers and footers) and reads its blocks. A self-closing root gets no
// Head or Tail, so the writer copies it unchanged.
func (p *parser) part(root string) (*document.Part, error) {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return &document.Part{}, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || !isW(se.Name, root) {
			continue
		}

		head := string(p.data[:p.dec.InputOffset()])
		keep := ""
		if root == "body" {
			keep = "sectPr"
		}
		var trailer string
		blocks, err := p.blocks(keep, &trailer)
		if err != nil {
			return nil, err
		}

		part := &document.Part{Blocks: blocks}
		if !strings.HasSuffix(head, "/>") {
			part.Head = head
			part.Tail = trailer + string(p.data[p.lastEnd:])
		}
		return part, nil
	}
}

// blocks reads paragraphs and tables until the enclosing element closes. The
// markup of a child element named keep is stored in kept.
func (p *parser) blocks(keep string, kept *string) ([]document.Block, error) {
	var out []document.Block
	open := 0
	for {
		start := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isW(t.Name, "p"):
				para, err := p.paragraph(start)
				if err != nil {
					return nil, err
				}
				out = append(out, para)
			case isW(t.Name, "tbl"):
				tbl, err := p.table()
				if err != nil {
					return nil, err
				}
				out = append(out, tbl)
			case transparent(t.Name):
				open++
			case keep != "" && open == 0 && isW(t.Name, keep):
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
				*kept = p.raw(start)
			default:
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if open == 0 {
				p.lastEnd = start
				return out, nil
			}
			open--
		}
	}
}

// paragraph collects the text and markup of a w:p that started at start.
func (p *parser) paragraph(start int64) (*document.Paragraph, error) {
	var (
		sb           strings.Builder
		markup       document.Markup
		runProps     string
		haveRunProps bool
		depth        int
		inText       bool
	)
	for {
		tokStart := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isW(t.Name, "pPr"):
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
				if depth == 0 {
					markup.Props = p.raw(tokStart)
				}
				continue
			case isW(t.Name, "rPr"):
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
				runProps = p.raw(tokStart)
				continue
			case isW(t.Name, "delText"), isW(t.Name, "instrText"):
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
				continue
			case isW(t.Name, "r"):
				runProps = ""
			case isW(t.Name, "t"):
				inText = true
				if !haveRunProps {
					markup.RunProps = runProps
					haveRunProps = true
				}
			case isW(t.Name, "tab"):
				sb.WriteByte('\t')
			case isW(t.Name, "br"), isW(t.Name, "cr"):
				sb.WriteByte('\n')
			case isW(t.Name, "p"):
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
			case object(t.Name):
				markup.Objects = true
			}
			depth++
		case xml.EndElement:
			if depth == 0 {
				markup.Text = sb.String()
				markup.Raw = p.raw(start)
				return &document.Paragraph{Text: markup.Text, Markup: markup}, nil
			}
			if isW(t.Name, "t") {
				inText = false
			}
			depth--
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
}

// table reads a w:tbl.
func (p *parser) table() (*document.Table, error) {
	tbl := &document.Table{}
	for {
		start := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isW(t.Name, "tr"):
				row, err := p.row()
				if err != nil {
					return nil, err
				}
				tbl.Rows = append(tbl.Rows, row)
				continue
			case isW(t.Name, "tblPr"):
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
				tbl.Markup.Props = p.raw(start)
				continue
			case isW(t.Name, "tblGrid"):
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
				tbl.Markup.Grid = p.raw(start)
				continue
			}
			if err := p.dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return tbl, nil
		}
	}
}

// row reads a w:tr.
func (p *parser) row() (*document.Row, error) {
	row := &document.Row{}
	for {
		start := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isW(t.Name, "tc"):
				cell := &document.Cell{}
				blocks, err := p.blocks("tcPr", &cell.Markup.Props)
				if err != nil {
					return nil, err
				}
				cell.Blocks = blocks
				row.Cells = append(row.Cells, cell)
				continue
			case isW(t.Name, "trPr"):
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
				row.Markup.Props = p.raw(start)
				continue
			}
			if err := p.dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return row, nil
		}
	}
}
