// =============================================================================
// Docx Mail Merge - Totals Aggregator
// =============================================================================
//
// Computes the trailing summary record appended to the full row list. Sums
// are exact decimals so that adding money columns does not drift.
//
// PER COLUMN:
//   - year / jaar             -> ""
//   - no numeric value at all -> ""
//   - amount-like name        -> "€" + grouped, 2 decimals
//   - number-like name        -> integer text, or the exact decimal
//   - anything else           -> ""
// The first column is always the label "Totaal".
//
// The amount check runs before the number check here, the reverse of field
// formatting. A column named "amount_number" is a currency total but an
// integer field value.
//
// =============================================================================

package totals

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/docx-mail-merge/internal/coerce"
	"github.com/ginjaninja78/docx-mail-merge/internal/matcher"
	"github.com/ginjaninja78/docx-mail-merge/internal/types"
)

// Label is written in the first column of the totals row.
const Label = "Totaal"

// Dataset is the tabular input: ordered column names and rows.
type Dataset interface {
	ColumnNames() []string
	Records() []types.Row
}

// Aggregator computes totals with a given formatter.
type Aggregator struct {
	formatter coerce.Formatter
}

// NewAggregator returns an Aggregator using f for currency output.
func NewAggregator(f coerce.Formatter) *Aggregator {
	return &Aggregator{formatter: f}
}

// Calculate returns one entry per column of ds.
//
// PARAMETERS:
//   - ds: The full dataset.
//
// RETURNS:
//   - The totals row. Empty when ds has no columns.
func (a *Aggregator) Calculate(ds Dataset) map[string]string {
	columns := ds.ColumnNames()
	rows := ds.Records()
	out := make(map[string]string, len(columns))

	for _, col := range columns {
		out[col] = a.columnTotal(col, rows)
	}

	if len(columns) > 0 {
		out[columns[0]] = Label
	}
	return out
}

func (a *Aggregator) columnTotal(col string, rows []types.Row) string {
	switch matcher.Normalize(col) {
	case "year", "jaar":
		return ""
	}

	sum := decimal.Zero
	numeric := false
	for _, r := range rows {
		n, ok := coerce.ToNumber(r[col])
		if !ok {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(n.Value))
		numeric = true
	}
	if !numeric {
		return ""
	}

	switch {
	case coerce.IsAmountLike(col):
		return a.formatter.Currency(sum.InexactFloat64())
	case coerce.IsNumberLike(col):
		if sum.IsInteger() {
			return sum.Truncate(0).String()
		}
		return sum.String()
	default:
		return ""
	}
}

// Calculate uses the default (nl) formatter.
func Calculate(ds Dataset) map[string]string {
	return NewAggregator(coerce.DefaultFormatter).Calculate(ds)
}

// AsRecord converts a totals row into the generic record shape used by the
// full row list.
func AsRecord(totals map[string]string) map[string]any {
	out := make(map[string]any, len(totals))
	for k, v := range totals {
		out[k] = v
	}
	return out
}
