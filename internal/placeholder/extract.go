// =============================================================================
// Docx Mail Merge - Placeholder Extractor
// =============================================================================
//
// Scans every text region of a template (body paragraphs, table cells,
// headers, footers and their tables) for two placeholder syntaxes:
//
//   {{ Field }}  : a field reference, trimmed of surrounding whitespace
//   [Field]      : an optional supplementary field, kept as written
//
// Both lists are deduplicated in first-occurrence order. Matching is
// non-greedy so adjacent placeholders on one line come out separately.
//
// =============================================================================

package placeholder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/docx-mail-merge/internal/document"
)

var (
	curlyPattern  = regexp.MustCompile(`\{\{(.*?)\}\}`)
	squarePattern = regexp.MustCompile(`\[(.*?)\]`)
	macroPattern  = regexp.MustCompile(`\{%\s*macro\s+\w+`)
)

// Fields holds the placeholders found in a template.
type Fields struct {
	Curly  []string
	Square []string
}

// Extract returns the curly and square fields of doc.
func Extract(doc *document.Document) (curly, square []string) {
	curlySeen := make(map[string]bool)
	squareSeen := make(map[string]bool)

	doc.Walk(func(p *document.Paragraph) {
		for _, m := range curlyPattern.FindAllStringSubmatch(p.Text, -1) {
			field := strings.TrimSpace(m[1])
			if !curlySeen[field] {
				curlySeen[field] = true
				curly = append(curly, field)
			}
		}
		for _, m := range squarePattern.FindAllStringSubmatch(p.Text, -1) {
			if !squareSeen[m[1]] {
				squareSeen[m[1]] = true
				square = append(square, m[1])
			}
		}
	})
	return curly, square
}

// ExtractFrom loads a template from src and extracts its fields. A load
// failure is returned as is; there is nothing to recover.
func ExtractFrom(src document.Source) (Fields, error) {
	doc, err := src.Load()
	if err != nil {
		return Fields{}, fmt.Errorf("failed to load template: %w", err)
	}
	curly, square := Extract(doc)
	return Fields{Curly: curly, Square: square}, nil
}

// HasMacros reports whether any text region opens a {% macro name %} block.
func HasMacros(doc *document.Document) bool {
	found := false
	doc.Walk(func(p *document.Paragraph) {
		if !found && macroPattern.MatchString(p.Text) {
			found = true
		}
	})
	return found
}
