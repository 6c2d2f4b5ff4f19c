// =============================================================================
// Docx Mail Merge - Value Coercion: Numbers
// =============================================================================
//
// Cell values arrive as whatever the dataset reader produced: strings typed by
// people in different locales, native numbers from spreadsheets, or nothing at
// all. ToNumber turns them into a float when that can be done without guessing.
//
// ACCEPTED STRING FORMS:
//   - "1234.5"      : plain decimal
//   - "1.234,56"    : European grouping (dots group, comma decimal)
//   - "12,5"        : single comma, no dot -> comma decimal
//   - "1 234"       : plain and narrow no-break (U+202F) spaces are dropped
//
// =============================================================================

package coerce

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// europeanGrouped matches "1.234,56" style numbers.
var europeanGrouped = regexp.MustCompile(`^\d{1,3}(\.\d{3})+,\d+$`)

// Number is the result of a successful numeric coercion.
type Number struct {
	// Value is the parsed value.
	Value float64

	// Integer reports whether Value is a whole number. Whole numbers are
	// displayed without forced decimals.
	Integer bool
}

// NewNumber wraps v, flagging whole values.
func NewNumber(v float64) Number {
	return Number{Value: v, Integer: v == math.Trunc(v)}
}

// String renders the number the way a plain str() of the coerced value
// would: whole numbers without a fraction, others in shortest form.
func (n Number) String() string {
	if n.Integer {
		return strconv.FormatFloat(n.Value, 'f', 0, 64)
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// ToNumber attempts to interpret v as a number.
//
// PARAMETERS:
//   - v: A raw cell value (string, any Go numeric type, or nil).
//
// RETURNS:
//   - The coerced Number.
//   - false when v is missing, empty, not a number, NaN or infinite.
func ToNumber(v any) (Number, bool) {
	switch n := v.(type) {
	case nil:
		return Number{}, false
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return NewNumber(float64(n)), true
	case int8:
		return NewNumber(float64(n)), true
	case int16:
		return NewNumber(float64(n)), true
	case int32:
		return NewNumber(float64(n)), true
	case int64:
		return NewNumber(float64(n)), true
	case uint:
		return NewNumber(float64(n)), true
	case uint8:
		return NewNumber(float64(n)), true
	case uint16:
		return NewNumber(float64(n)), true
	case uint32:
		return NewNumber(float64(n)), true
	case uint64:
		return NewNumber(float64(n)), true
	case time.Time:
		return Number{}, false
	}

	s := strings.TrimSpace(stringOf(v))
	if s == "" {
		return Number{}, false
	}

	if europeanGrouped.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	s = strings.ReplaceAll(s, "\u202f", "")
	s = strings.ReplaceAll(s, " ", "")

	// strconv accepts hex floats and "0x" prefixes, spreadsheets never mean those.
	if strings.ContainsAny(s, "xXpP") {
		return Number{}, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, false
	}
	return finite(f)
}

func finite(f float64) (Number, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}, false
	}
	return NewNumber(f), true
}

// IsMissing reports whether v is an absent cell: nil or a NaN float.
func IsMissing(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(n)
	case float32:
		return math.IsNaN(float64(n))
	}
	return false
}

// stringOf returns the verbatim string form of a raw value.
func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// StringOf is the exported verbatim string form used when a value is
// neither a date nor a number.
func StringOf(v any) string {
	return stringOf(v)
}
