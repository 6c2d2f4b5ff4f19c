package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagParagraph(t *testing.T) {
	for _, text := range []string{
		"{% if x %}",
		"  {%endfor%} ",
		"{# reminder #}",
		"{% macro greet(name) %}",
		"{% set total = 0 %}",
	} {
		assert.True(t, TagParagraph(&Paragraph{Text: text}), text)
	}

	for _, text := range []string{
		"Dear {{ Naam }}",
		"{% if x %}yes{% endif %} and more",
		"plain",
	} {
		assert.False(t, TagParagraph(&Paragraph{Text: text}), text)
	}
}

func TestEmptyParagraphKeepsPictures(t *testing.T) {
	assert.True(t, EmptyParagraph(&Paragraph{Text: " "}))
	assert.False(t, EmptyParagraph(&Paragraph{Markup: Markup{Objects: true}}))
	assert.False(t, EmptyParagraph(&Paragraph{Text: "x"}))
}

func TestBlankRow(t *testing.T) {
	rule := BlankRow(DefaultShortCellLimit)

	assert.True(t, rule(NewTable([][]string{{"", " "}}).Rows[0]))
	assert.True(t, rule(NewTable([][]string{{"_________________________ signature", ""}}).Rows[0]))
	assert.True(t, rule(NewTable([][]string{{"€5", "ok"}}).Rows[0]))
	assert.False(t, rule(NewTable([][]string{{"", "Jan Jansen"}}).Rows[0]))

	noLimit := BlankRow(-1)
	assert.False(t, noLimit(NewTable([][]string{{"€5", ""}}).Rows[0]))
	assert.True(t, noLimit(NewTable([][]string{{"", ""}}).Rows[0]))
}

func TestCleanup(t *testing.T) {
	doc := New()
	doc.AddParagraph("Beste Jan,")
	doc.AddParagraph("   ")
	doc.AddParagraph("{% endif %}")
	doc.AddTable([][]string{
		{"Omschrijving", "Bedrag"},
		{"", ""},
		{"Huur", "€1.234,50"},
	})
	doc.Parts = append(doc.Parts, &Part{Kind: PartHeader, Blocks: []Block{&Paragraph{Text: ""}}})

	stats := Cleanup(doc, DefaultCleanupOptions())

	assert.Equal(t, CleanupStats{ParagraphsRemoved: 2, RowsRemoved: 1}, stats)

	body := doc.Body()
	require.Len(t, body.Blocks, 2)
	assert.Equal(t, "Beste Jan,", body.Blocks[0].(*Paragraph).Text)
	table := body.Blocks[1].(*Table)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Huur", table.Rows[1].Cells[0].Text())

	assert.Len(t, doc.Parts[1].Blocks, 1, "headers are not cleaned")
}

func TestCleanupDisabledRules(t *testing.T) {
	doc := New()
	doc.AddParagraph("")
	doc.AddTable([][]string{{"", ""}})

	stats := Cleanup(doc, CleanupOptions{})

	assert.Equal(t, CleanupStats{}, stats)
	assert.Len(t, doc.Body().Blocks, 2)
}

func TestCustomRules(t *testing.T) {
	doc := New()
	doc.AddParagraph("DRAFT")
	doc.AddParagraph("keep")

	c := &Cleaner{Paragraphs: []ParagraphRule{func(p *Paragraph) bool { return p.Text == "DRAFT" }}}
	stats := c.Apply(doc)

	assert.Equal(t, 1, stats.ParagraphsRemoved)
	assert.Equal(t, []string{"keep"}, doc.Texts())
}
