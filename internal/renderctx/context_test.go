package renderctx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/docx-mail-merge/internal/coerce"
	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

func identity(fields ...string) types.FieldMapping {
	m := make(types.FieldMapping, len(fields))
	for i, f := range fields {
		m[i] = types.MappingEntry{Field: f, Column: f}
	}
	return m
}

func TestBuildEndToEnd(t *testing.T) {
	row := types.Row{"Naam": "Jan", "Bedrag": "1234,5", "Datum": "2024-01-15"}

	ctx := Build(row, identity("Naam", "Bedrag", "Datum"), nil, coerce.LanguageNL)

	assert.Equal(t, "Jan", ctx["Naam"])
	assert.Equal(t, "€1.234,50", ctx["Bedrag"])
	assert.Equal(t, "15 januari 2024", ctx["Datum"])
	assert.Equal(t, "Jan", ctx["row.Naam"])
	assert.Equal(t, "€1.234,50", ctx["row.Bedrag"])
	assert.Equal(t, "15 januari 2024", ctx["row.Datum"])
}

func TestBuildAliasInvariant(t *testing.T) {
	row := types.Row{"a": "1", "b": nil}
	mapping := types.FieldMapping{{Field: "A", Column: "a"}, {Field: "B", Column: "b"}, {Field: "C"}, {Field: "D", Column: "missing"}}

	ctx := Build(row, mapping, nil, coerce.LanguageUK)

	for _, k := range []string{"A", "B", "C", "D"} {
		require.Contains(t, ctx, k)
		assert.Equal(t, ctx[k], ctx["row."+k], k)
		assert.NotContains(t, ctx, "row.row."+k)
	}
	assert.Equal(t, "", ctx["B"])
	assert.Equal(t, "", ctx["C"])
	assert.Equal(t, "", ctx["D"])
}

func TestBuildSquareFields(t *testing.T) {
	row := types.Row{"Kenmerk_Klant": "K-12", "Aantal": "3,0"}
	square := []types.SquareField{
		{Name: "kenmerk klant", Include: true},
		{Name: "Aantal", Include: true},
		{Name: "Onbekend", Include: true},
		{Name: "Skip", Include: false},
	}

	ctx := Build(row, nil, square, coerce.LanguageUK)

	assert.Equal(t, "K-12", ctx["kenmerk klant"])
	assert.Equal(t, "3", ctx["Aantal"])
	assert.Equal(t, "", ctx["Onbekend"])
	assert.NotContains(t, ctx, "Skip")
	assert.NotContains(t, ctx, "row.kenmerk klant")
}

func TestBuildRowsOne(t *testing.T) {
	row := types.Row{"First Name": "Jan", "Score": math.NaN(), "Note": "nan", "Empty": nil}

	ctx := Build(row, nil, nil, coerce.LanguageUK)

	rows, ok := ctx[KeyRowsOne].([]map[string]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{
		"firstname": "Jan", "row.firstname": "Jan",
		"score": "", "row.score": "",
		"note": "", "row.note": "",
		"empty": "", "row.empty": "",
	}, rows[0])
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	row := types.Row{"Naam": "Jan"}
	mapping := identity("Naam")
	square := []types.SquareField{{Name: "Naam", Include: true}}

	_ = Build(row, mapping, square, coerce.LanguageUK)

	assert.Equal(t, types.Row{"Naam": "Jan"}, row)
	assert.Equal(t, identity("Naam"), mapping)
	assert.Equal(t, []types.SquareField{{Name: "Naam", Include: true}}, square)
}

func TestBuilderUsesFormatter(t *testing.T) {
	b := NewBuilder(coerce.NewFormatter("en"))
	ctx := b.Build(types.Row{"Bedrag": 1500}, identity("Bedrag"), nil, coerce.LanguageUK)
	assert.Equal(t, "€1,500.00", ctx["Bedrag"])
}

func TestWithDataset(t *testing.T) {
	all := []map[string]any{{"Naam": "Jan"}, {"Naam": "Totaal"}}
	ctx := WithDataset(types.RenderContext{}, all)
	assert.Equal(t, all, ctx[KeyRowsAll])
	assert.Equal(t, all, ctx[KeyRows])
}
