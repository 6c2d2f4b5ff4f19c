package coerce

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    float64
		integer bool
		ok      bool
	}{
		{"european grouped", "1.234,56", 1234.56, false, true},
		{"european grouped millions", "1.234.567,8", 1234567.8, false, true},
		{"single comma decimal", "12,5", 12.5, false, true},
		{"plain decimal", "1234.5", 1234.5, false, true},
		{"whole string", " 42 ", 42, true, true},
		{"whole float string", "3.0", 3, true, true},
		{"space separated", "1 234", 1234, true, true},
		{"narrow no-break space", "1\u202f234,5", 1234.5, false, true},
		{"native int", 7, 7, true, true},
		{"native float", 2.25, 2.25, false, true},
		{"native whole float", 3.0, 3, true, true},
		{"empty", "", 0, false, false},
		{"nil", nil, 0, false, false},
		{"text", "abc", 0, false, false},
		{"comma and dot", "1,234.56", 0, false, false},
		{"nan float", math.NaN(), 0, false, false},
		{"nan string", "nan", 0, false, false},
		{"inf string", "inf", 0, false, false},
		{"hex", "0x1F", 0, false, false},
		{"date", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.InDelta(t, tt.want, got.Value, 1e-9)
			assert.Equal(t, tt.integer, got.Integer)
		})
	}
}

func TestNumberString(t *testing.T) {
	assert.Equal(t, "3", NewNumber(3).String())
	assert.Equal(t, "1234.5", NewNumber(1234.5).String())
	assert.Equal(t, "-2", NewNumber(-2).String())
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(math.NaN()))
	assert.True(t, IsMissing(float32(math.NaN())))
	assert.False(t, IsMissing(""))
	assert.False(t, IsMissing("nan"))
	assert.False(t, IsMissing(0))
}
