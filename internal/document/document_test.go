package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	doc := New()
	doc.AddParagraph("Beste {{ Naam }},")
	doc.AddTable([][]string{{"{{ Bedrag }}", "x"}})
	doc.AddParagraph("Groet")
	doc.Parts = append(doc.Parts, &Part{
		Kind:   PartFooter,
		Name:   "footer1",
		Blocks: []Block{&Paragraph{Text: "[Kenmerk]"}},
	})
	return doc
}

func TestWalkOrder(t *testing.T) {
	doc := sampleDocument()
	assert.Equal(t, []string{"Beste {{ Naam }},", "Groet", "{{ Bedrag }}", "x", "[Kenmerk]"}, doc.Texts())
}

func TestCloneIsDeep(t *testing.T) {
	doc := sampleDocument()
	cp := doc.Clone()
	if diff := cmp.Diff(doc, cp); diff != "" {
		t.Fatalf("clone differs (-want +got):\n%s", diff)
	}

	cp.Walk(func(p *Paragraph) { p.Text = "changed" })

	assert.Equal(t, "Beste {{ Naam }},", doc.Texts()[0])
	assert.Equal(t, "{{ Bedrag }}", doc.Texts()[2])
	assert.Equal(t, PartFooter, cp.Parts[1].Kind)
}

func TestBodyCreatedWhenMissing(t *testing.T) {
	doc := &Document{Parts: []*Part{{Kind: PartHeader, Name: "header1"}}}
	body := doc.Body()
	require.NotNil(t, body)
	assert.Equal(t, PartBody, doc.Parts[0].Kind)
}

func TestCellText(t *testing.T) {
	cell := &Cell{Blocks: []Block{&Paragraph{Text: " a "}, &Paragraph{Text: "  "}, &Paragraph{Text: "b"}}}
	assert.Equal(t, "a  b", cell.Text())
}

func TestPartKindString(t *testing.T) {
	assert.Equal(t, "body", PartBody.String())
	assert.Equal(t, "header", PartHeader.String())
	assert.Equal(t, "footer", PartFooter.String())
}
