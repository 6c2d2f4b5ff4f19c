// =============================================================================
// Docx Mail Merge - Context Builder
// =============================================================================
//
// Builds the RenderContext for one data row:
//
//   1. mapped fields, formatted with the field name as hint ("" if unmapped)
//   2. a "row.<key>" alias for every key from step 1
//   3. included square fields, looked up by normalized name
//   4. rows_one: the normalized row wrapped in a one-element list
//
// Aliases are taken from a snapshot of the keys, so they are never aliased
// again. The builder never modifies its inputs.
//
// =============================================================================

package renderctx

import (
	"strings"

	"github.com/ginjaninja78/docx-mail-merge/internal/coerce"
	"github.com/ginjaninja78/docx-mail-merge/internal/matcher"
	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

// Reserved context keys.
const (
	KeyRowsOne = "rows_one"
	KeyRowsAll = "rows_all"
	KeyRows    = "rows"
)

// Builder assembles render contexts with a fixed formatter.
type Builder struct {
	formatter coerce.Formatter
}

// NewBuilder returns a Builder using f for value formatting.
func NewBuilder(f coerce.Formatter) *Builder {
	return &Builder{formatter: f}
}

// Build creates the context for row.
//
// PARAMETERS:
//   - row: The data row (column name -> raw value).
//   - mapping: Template field to column pairs, possibly edited by the user.
//   - square: Supplementary fields; only those with Include set are added.
//   - lang: Long date language.
//
// RETURNS:
//   - A fresh RenderContext.
func (b *Builder) Build(row types.Row, mapping types.FieldMapping, square []types.SquareField, lang coerce.Language) types.RenderContext {
	ctx := make(types.RenderContext, 2*len(mapping)+len(square)+1)

	normRow := make(map[string]any, len(row))
	for k, v := range row {
		normRow[matcher.Normalize(k)] = v
	}

	for _, entry := range mapping {
		raw, present := row[entry.Column]
		if entry.Column == "" || !present {
			ctx[entry.Field] = ""
			continue
		}
		ctx[entry.Field] = b.formatter.FormatFieldValue(raw, entry.Field, lang)
	}

	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	for _, k := range keys {
		ctx[types.RowPrefix+k] = ctx[k]
	}

	for _, sf := range square {
		if !sf.Include {
			continue
		}
		var raw any = ""
		if v, ok := normRow[matcher.Normalize(sf.Name)]; ok {
			raw = v
		}
		ctx[sf.Name] = b.formatter.FormatFieldValue(raw, sf.Name, lang)
	}

	ctx[KeyRowsOne] = WrapRow(normRow)
	return ctx
}

// Build uses the default (nl) formatter.
func Build(row types.Row, mapping types.FieldMapping, square []types.SquareField, lang coerce.Language) types.RenderContext {
	return NewBuilder(coerce.DefaultFormatter).Build(row, mapping, square, lang)
}

// WrapRow returns a one-element list holding a cleaned copy of record with a
// "row.<key>" duplicate for every key. Missing values and the literal text
// "nan" become "".
func WrapRow(record map[string]any) []map[string]any {
	cleaned := make(map[string]any, 2*len(record))
	for k, v := range record {
		val := CleanValue(v)
		cleaned[k] = val
		cleaned[types.RowPrefix+k] = val
	}
	return []map[string]any{cleaned}
}

// CleanValue maps nil, NaN and "nan" to "" and returns anything else as is.
func CleanValue(v any) any {
	if coerce.IsMissing(v) {
		return ""
	}
	if strings.ToLower(strings.TrimSpace(coerce.StringOf(v))) == "nan" {
		return ""
	}
	return v
}

// WithDataset adds the full row list (rows_all) and its alias (rows) to ctx.
func WithDataset(ctx types.RenderContext, rowsAll []map[string]any) types.RenderContext {
	ctx[KeyRowsAll] = rowsAll
	ctx[KeyRows] = rowsAll
	return ctx
}
