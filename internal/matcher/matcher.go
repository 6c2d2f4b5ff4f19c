// =============================================================================
// Docx Mail Merge - Field Matcher
// =============================================================================
//
// Proposes a data column for every template field. Names are compared after
// normalization only, so "First Name", "first_name" and "FirstName" meet on
// the same key. The proposal is advisory: users edit it before generating,
// and the matcher never fails.
//
// =============================================================================

package matcher

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

var separators = regexp.MustCompile(`[\s_]+`)

// Normalize lower-cases s and removes surrounding and internal whitespace and
// underscores. It is the sole join key between fields and columns.
func Normalize(s string) string {
	return separators.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// StripRowPrefix removes a leading "row." from a field so that row.Voornaam
// and Voornaam match the same column. The prefix match is exact.
func StripRowPrefix(field string) string {
	f := strings.TrimSpace(field)
	return strings.TrimPrefix(f, types.RowPrefix)
}

// Suggestion is one proposed field/column pair.
type Suggestion struct {
	// Field is the template field as written in the template.
	Field string

	// Column is the matched header, or "" when nothing matched.
	Column string

	// Example is the first sample row's value in Column, or "" when
	// unmatched or when there is no sample.
	Example any
}

// Suggestions is an ordered proposal, one entry per template field.
type Suggestions []Suggestion

// Mapping converts the proposal into an editable FieldMapping.
func (s Suggestions) Mapping() types.FieldMapping {
	out := make(types.FieldMapping, len(s))
	for i, sg := range s {
		out[i] = types.MappingEntry{Field: sg.Field, Column: sg.Column}
	}
	return out
}

// Unmatched lists the fields without a proposed column.
func (s Suggestions) Unmatched() []string {
	var out []string
	for _, sg := range s {
		if sg.Column == "" {
			out = append(out, sg.Field)
		}
	}
	return out
}

// HeaderIndex maps normalized header names to the original header. Headers
// that collide after normalization resolve to the last one seen.
func HeaderIndex(headers []string) map[string]string {
	index := make(map[string]string, len(headers))
	for _, h := range headers {
		index[Normalize(h)] = h
	}
	return index
}

// CreateFieldMapping proposes a column and an example value for each field.
//
// PARAMETERS:
//   - fields: Template fields in template order.
//   - headers: Dataset column names.
//   - sample: Data rows; only the first is used for examples.
//
// RETURNS:
//   - One Suggestion per field, in field order.
func CreateFieldMapping(fields, headers []string, sample []types.Row) Suggestions {
	index := HeaderIndex(headers)

	out := make(Suggestions, 0, len(fields))
	for _, field := range fields {
		column := index[Normalize(StripRowPrefix(field))]

		var example any = ""
		if column != "" && len(sample) > 0 {
			if v, ok := sample[0][column]; ok && v != nil {
				example = v
			}
		}

		out = append(out, Suggestion{Field: field, Column: column, Example: example})
	}
	return out
}

// ExtraColumns lists the headers that no template field refers to, in
// header order.
func ExtraColumns(fields, headers []string) []string {
	used := make(map[string]bool, len(fields))
	for _, f := range fields {
		used[Normalize(StripRowPrefix(f))] = true
	}

	var out []string
	for _, h := range headers {
		if !used[Normalize(h)] {
			out = append(out, h)
		}
	}
	return out
}
