package tabular

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderMap(t *testing.T) {
	hm := NewHeaderMap("ledger", []any{" teacher ", "date", "", "teacher", "qty"})

	assert.Equal(t, "ledger", hm.Sheet())
	assert.Equal(t, 5, hm.Width())
	assert.Equal(t, 0, hm.Index("teacher"))
	assert.Equal(t, 1, hm.Index("date"))
	assert.Equal(t, 4, hm.Index("qty"))
	assert.Equal(t, -1, hm.Index("missing"))

	row := []any{"Dana", 45509.0}
	assert.Equal(t, "Dana", hm.Text(row, "teacher"))
	assert.Equal(t, 45509.0, hm.Cell(row, "date"))
	assert.Nil(t, hm.Cell(row, "qty"), "short rows read as blank")
}

func TestHeaderMap_Require(t *testing.T) {
	hm := NewHeaderMap("courses", []any{"teacher", "course"})

	require.NoError(t, hm.Require("teacher", "course"))

	err := hm.Require("teacher", "day")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMissingConfig))

	var cfgErr *common.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "courses", cfgErr.Sheet)
	assert.Equal(t, "day", cfgErr.Column)
}

func TestHeaderMap_Reordered(t *testing.T) {
	a := NewHeaderMap("s", []any{"x", "y"})
	b := NewHeaderMap("s", []any{"y", "x"})

	assert.Equal(t, "1", a.Text([]any{"1", "2"}, "x"))
	assert.Equal(t, "1", b.Text([]any{"2", "1"}, "x"))
	assert.Equal(t, []string{"y", "x"}, b.Names())
}

func TestString(t *testing.T) {
	tests := []struct {
		in   any
		name string
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "padded", in: "  a b ", want: "a b"},
		{name: "whole float", in: 3.0, want: "3"},
		{name: "fraction", in: 1.5, want: "1.5"},
		{name: "nan", in: math.NaN(), want: ""},
		{name: "int", in: 7, want: "7"},
		{name: "bool", in: true, want: "true"},
		{name: "date", in: time.Date(2024, 8, 5, 12, 0, 0, 0, time.UTC), want: "2024-08-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, String(tt.in))
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in     any
		want   decimal.Decimal
		name   string
		wantOK bool
	}{
		{name: "float", in: 1.5, want: decimal.RequireFromString("1.5"), wantOK: true},
		{name: "string", in: " 2 ", want: decimal.NewFromInt(2), wantOK: true},
		{name: "int", in: 4, want: decimal.NewFromInt(4), wantOK: true},
		{name: "blank", in: ""},
		{name: "nil", in: nil},
		{name: "text", in: "two"},
		{name: "infinite", in: math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Number(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}

	assert.True(t, NumberOr("x", decimal.NewFromInt(1)).Equal(decimal.NewFromInt(1)))
}

func TestDate(t *testing.T) {
	assert.True(t, Date("garbage").IsZero())
	assert.Equal(t, "2024-08-05", String(Date("5/8/2024")))
}
