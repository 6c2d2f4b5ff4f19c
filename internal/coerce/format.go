// =============================================================================
// Docx Mail Merge - Value Coercion: Display Formatting
// =============================================================================
//
// FormatFieldValue turns a raw cell into the string placed in a document. The
// template field's name is the only type information available, so it is
// sniffed for hints. Checks run in a fixed order and changing it changes
// output:
//
//   1. missing (nil / NaN)           -> ""
//   2. date                          -> long-form date
//   3. numeric, number-like name     -> integer text
//   4. numeric, amount-like name     -> "€" + grouped, 2 decimals
//   5. numeric                       -> integers plain, others grouped 2 decimals
//   6. anything else                 -> verbatim string
//
// Formatting never fails. Values that cannot be coerced keep their string form.
//
// =============================================================================

package coerce

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// NumberLocale selects the thousands and decimal separators.
type NumberLocale string

const (
	// LocaleNL groups as 1.234,56.
	LocaleNL NumberLocale = "nl"

	// LocaleEN groups as 1,234.56.
	LocaleEN NumberLocale = "en"
)

// CurrencySymbol prefixes amount-like values and totals.
const CurrencySymbol = "€"

// Formatter formats cell values for one number locale.
type Formatter struct {
	Locale NumberLocale
}

// DefaultFormatter uses Dutch grouping.
var DefaultFormatter = Formatter{Locale: LocaleNL}

// NewFormatter returns a Formatter for the given locale code ("nl" or "en").
// Unknown codes use nl.
func NewFormatter(locale string) Formatter {
	if NumberLocale(strings.ToLower(strings.TrimSpace(locale))) == LocaleEN {
		return Formatter{Locale: LocaleEN}
	}
	return Formatter{Locale: LocaleNL}
}

// Grouped formats v with thousands grouping and two decimals.
func (f Formatter) Grouped(v float64) string {
	if f.Locale == LocaleEN {
		return humanize.FormatFloat("#,###.##", v)
	}
	return humanize.FormatFloat("#.###,##", v)
}

// Currency formats v as a euro amount.
func (f Formatter) Currency(v float64) string {
	return CurrencySymbol + f.Grouped(v)
}

// FormatFieldValue produces the display string for raw under field's name.
//
// PARAMETERS:
//   - raw: The raw cell value.
//   - field: The template field name, used as a formatting hint.
//   - lang: The long date language (NL, US, UK).
//
// RETURNS:
//   - The display string. Never fails.
func (f Formatter) FormatFieldValue(raw any, field string, lang Language) string {
	if IsMissing(raw) {
		return ""
	}

	if t, ok := ParseDate(raw); ok {
		return FormatDateLong(t, lang)
	}

	n, ok := ToNumber(raw)
	if !ok {
		return stringOf(raw)
	}

	switch {
	case IsNumberLike(field):
		return n.String()
	case IsAmountLike(field):
		return f.Currency(n.Value)
	case n.Integer:
		return strconv.FormatFloat(n.Value, 'f', 0, 64)
	default:
		return f.Grouped(n.Value)
	}
}

// FormatFieldValue formats with the default (nl) number locale.
func FormatFieldValue(raw any, field string, lang Language) string {
	return DefaultFormatter.FormatFieldValue(raw, field, lang)
}

// =============================================================================
// FIELD NAME HINTS
// =============================================================================

// IsNumberLike reports whether a field name asks for integer display.
func IsNumberLike(field string) bool {
	name := strings.ToLower(field)
	return strings.Contains(name, "number") ||
		strings.Contains(name, "#") ||
		strings.Contains(name, "count") ||
		strings.HasPrefix(name, "aantal")
}

// IsAmountLike reports whether a field name asks for currency display.
func IsAmountLike(field string) bool {
	name := strings.ToLower(field)
	return strings.Contains(name, "amount") || strings.Contains(name, "bedrag")
}
