// =============================================================================
// Docx Mail Merge - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - matcher
//   - renderctx
//   - totals
//   - generator
//
// =============================================================================

package types

// =============================================================================
// DATA TYPES
// =============================================================================

// Row is a single data record keyed by (normalized) column name.
// Values are raw cell values: string, a numeric type, time.Time, or nil
// for a missing cell.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// =============================================================================
// MAPPING TYPES
// =============================================================================

// MappingEntry pairs a template field with a data column.
// An empty Column means the field is unmapped.
type MappingEntry struct {
	Field  string `yaml:"field" json:"field"`
	Column string `yaml:"column" json:"column"`
}

// FieldMapping is the ordered list of field/column pairs.
type FieldMapping []MappingEntry

// Columns returns the mapped column for each field (unmapped fields omitted).
func (m FieldMapping) Columns() map[string]string {
	out := make(map[string]string, len(m))
	for _, e := range m {
		if e.Column != "" {
			out[e.Field] = e.Column
		}
	}
	return out
}

// SquareField is a bracketed template field with its inclusion flag.
type SquareField struct {
	Name    string `yaml:"name" json:"name"`
	Include bool   `yaml:"include" json:"include"`
}

// =============================================================================
// RENDER CONTEXT
// =============================================================================

// RenderContext is the per-row key/value map handed to the renderer.
// For every mapped key k, "row.k" holds the same value.
type RenderContext map[string]any

// RowPrefix is the alias prefix used by templates written as {{ row.Field }}.
const RowPrefix = "row."
