package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "firstname", Normalize("First Name"))
	assert.Equal(t, "firstname", Normalize("first_name"))
	assert.Equal(t, "firstname", Normalize("  FirstName "))
	assert.Equal(t, "abc", Normalize("a _\tb__c"))
}

func TestStripRowPrefix(t *testing.T) {
	assert.Equal(t, "Voornaam", StripRowPrefix("row.Voornaam"))
	assert.Equal(t, "Voornaam", StripRowPrefix(" row.Voornaam"))
	assert.Equal(t, "Row.Voornaam", StripRowPrefix("Row.Voornaam"))
	assert.Equal(t, "rowVoornaam", StripRowPrefix("rowVoornaam"))
}

func TestCreateFieldMapping(t *testing.T) {
	fields := []string{"First Name", "row.Bedrag", "Unknown"}
	headers := []string{"first_name", "Bedrag", "Datum"}
	sample := []types.Row{
		{"first_name": "Jan", "Bedrag": "1234,5", "Datum": "2024-01-15"},
		{"first_name": "Piet", "Bedrag": "10", "Datum": "2024-02-01"},
	}

	got := CreateFieldMapping(fields, headers, sample)
	require.Len(t, got, 3)

	assert.Equal(t, Suggestion{Field: "First Name", Column: "first_name", Example: "Jan"}, got[0])
	assert.Equal(t, Suggestion{Field: "row.Bedrag", Column: "Bedrag", Example: "1234,5"}, got[1])
	assert.Equal(t, Suggestion{Field: "Unknown", Column: "", Example: ""}, got[2])
	assert.Equal(t, []string{"Unknown"}, got.Unmatched())
}

func TestCreateFieldMappingWithoutSample(t *testing.T) {
	got := CreateFieldMapping([]string{"Naam"}, []string{"naam"}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "naam", got[0].Column)
	assert.Equal(t, "", got[0].Example)
}

func TestHeaderCollisionLastWins(t *testing.T) {
	got := CreateFieldMapping([]string{"Post Code"}, []string{"PostCode", "post_code"}, nil)
	assert.Equal(t, "post_code", got[0].Column)
}

func TestSuggestionsMapping(t *testing.T) {
	s := Suggestions{{Field: "A", Column: "a"}, {Field: "B"}}
	assert.Equal(t, types.FieldMapping{{Field: "A", Column: "a"}, {Field: "B", Column: ""}}, s.Mapping())
}

func TestExtraColumns(t *testing.T) {
	got := ExtraColumns([]string{"row.Naam", "Post Code"}, []string{"naam", "post_code", "IBAN", "Telefoon"})
	assert.Equal(t, []string{"IBAN", "Telefoon"}, got)
	assert.Nil(t, ExtraColumns([]string{"A"}, []string{"a"}))
}
