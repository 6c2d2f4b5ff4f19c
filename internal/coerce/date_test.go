package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   any
		want time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{" 15-01-2024 ", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"03/04/2024", time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)},
		{"12/31/2024", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"March 5, 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"5 March 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05 14:30:00", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		require.True(t, ok, "expected %v to parse", tt.in)
		assert.True(t, tt.want.Equal(got), "got %v for %v", got, tt.in)
	}
}

func TestParseDateRejects(t *testing.T) {
	for _, in := range []any{"", "   ", "abc", "1234,5", "2024", "12", "32/13/2024", 45000, nil} {
		_, ok := ParseDate(in)
		assert.False(t, ok, "expected %v to be rejected", in)
	}
}

func TestParseDatePassesTimeThrough(t *testing.T) {
	in := time.Date(2023, 7, 1, 9, 0, 0, 0, time.Local)
	got, ok := ParseDate(in)
	require.True(t, ok)
	assert.Equal(t, in, got)
}

func TestOrdinalEN(t *testing.T) {
	cases := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th",
		13: "13th", 21: "21st", 22: "22nd", 23: "23rd", 31: "31st", 111: "111th",
	}
	for n, want := range cases {
		assert.Equal(t, want, OrdinalEN(n))
	}
}

func TestFormatDateLong(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "5 maart 2024", FormatDateLong(d, LanguageNL))
	assert.Equal(t, "March 5th, 2024", FormatDateLong(d, LanguageUS))
	assert.Equal(t, "5 March 2024", FormatDateLong(d, LanguageUK))
	assert.Equal(t, "5 March 2024", FormatDateLong(d, Language("DE")))
	assert.Equal(t, "5 maart 2024", FormatDateLong(d, Language("nl")))
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LanguageNL, ParseLanguage(" nl "))
	assert.Equal(t, LanguageUS, ParseLanguage("US"))
	assert.Equal(t, LanguageUK, ParseLanguage(""))
	assert.Equal(t, LanguageUK, ParseLanguage("fr"))
}
