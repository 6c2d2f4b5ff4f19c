// =============================================================================
// Docx Mail Merge - Value Coercion: Dates
// =============================================================================
//
// Dates are parsed with two explicit, ordered layout sets: day-first layouts
// are tried before month-first layouts, so "03/04/2024" is 3 April 2024.
// Bare numbers are never treated as dates.
//
// =============================================================================

package coerce

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dayFirstLayouts are attempted first. ISO and textual layouts are not
// ambiguous and live here so they are tried once.
var dayFirstLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/1/2",
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2-1-2006 15:04",
	"2/1/2006 15:04",
	"2-1-2006 15:04:05",
	"2/1/2006 15:04:05",
	"2 January 2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Monday, 2 January 2006",
	"Monday, January 2, 2006",
}

// monthFirstLayouts are attempted when no day-first layout matched.
var monthFirstLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"1.2.2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
}

// ParseDate determines whether v represents a calendar date.
//
// PARAMETERS:
//   - v: A time.Time (passed through) or a string.
//
// RETURNS:
//   - The parsed date and true on success.
//   - false for empty strings, bare numbers, other types and unparseable text.
func ParseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return *d, true
	case string:
		return parseDateString(d)
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return time.Time{}, false
	}

	for _, set := range [][]string{dayFirstLayouts, monthFirstLayouts} {
		for _, layout := range set {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// =============================================================================
// LONG-FORM DATES
// =============================================================================

// Language selects the long date style.
type Language string

const (
	// LanguageNL renders "5 maart 2024".
	LanguageNL Language = "NL"

	// LanguageUS renders "March 5th, 2024".
	LanguageUS Language = "US"

	// LanguageUK renders "5 March 2024". Unknown codes fall back to UK.
	LanguageUK Language = "UK"
)

// ParseLanguage maps a user supplied code to a Language. Anything that is
// not NL or US is UK.
func ParseLanguage(code string) Language {
	switch Language(strings.ToUpper(strings.TrimSpace(code))) {
	case LanguageNL:
		return LanguageNL
	case LanguageUS:
		return LanguageUS
	}
	return LanguageUK
}

var monthsNL = [...]string{
	"januari", "februari", "maart", "april", "mei", "juni",
	"juli", "augustus", "september", "oktober", "november", "december",
}

// OrdinalEN returns n with its English ordinal suffix (1st, 2nd, 11th, 21st).
func OrdinalEN(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// FormatDateLong renders t as a long-form date in the given language.
func FormatDateLong(t time.Time, lang Language) string {
	switch ParseLanguage(string(lang)) {
	case LanguageNL:
		return fmt.Sprintf("%d %s %d", t.Day(), monthsNL[t.Month()-1], t.Year())
	case LanguageUS:
		return fmt.Sprintf("%s %s, %d", t.Month().String(), OrdinalEN(t.Day()), t.Year())
	default:
		return fmt.Sprintf("%d %s %d", t.Day(), t.Month().String(), t.Year())
	}
}
