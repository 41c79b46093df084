package dates

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlexible(t *testing.T) {
	aug5 := time.Date(2024, time.August, 5, 12, 0, 0, 0, time.UTC)
	jerusalem := time.FixedZone("IDT", 3*60*60)

	tests := []struct {
		value  any
		want   time.Time
		name   string
		wantOK bool
	}{
		{name: "native date", value: time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC), want: aug5, wantOK: true},
		{name: "native date near midnight keeps its own day", value: time.Date(2024, 8, 5, 23, 59, 0, 0, jerusalem), want: aug5, wantOK: true},
		{name: "serial", value: float64(45509), want: aug5, wantOK: true},
		{name: "serial with time fraction", value: 45509.75, want: aug5, wantOK: true},
		{name: "integer serial", value: 45509, want: aug5, wantOK: true},
		{name: "numeric string", value: "45509", want: aug5, wantOK: true},
		{name: "iso", value: "2024-08-05", want: aug5, wantOK: true},
		{name: "iso without padding", value: "2024-8-5", want: aug5, wantOK: true},
		{name: "day month year", value: "5/8/2024", want: aug5, wantOK: true},
		{name: "padded day month year", value: " 05/08/2024 ", want: aug5, wantOK: true},
		{name: "timestamp", value: "2024-08-05 09:30:00", want: aug5, wantOK: true},
		{name: "long form", value: "August 5, 2024", want: aug5, wantOK: true},
		{name: "nil", value: nil},
		{name: "empty", value: ""},
		{name: "garbage", value: "next tuesday"},
		{name: "NaN float", value: math.NaN()},
		{name: "infinite float", value: math.Inf(1)},
		{name: "NaN string", value: "NaN"},
		{name: "rolled over day", value: "31/2/2024"},
		{name: "bad iso month", value: "2024-13-01"},
		{name: "zero time", value: time.Time{}},
		{name: "unsupported type", value: struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFlexible(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
				assert.Equal(t, 12, got.Hour())
			}
		})
	}
}

func TestParseFlexible_RoundTrip(t *testing.T) {
	days := []time.Time{
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC),
		time.Date(1999, time.January, 1, 6, 0, 0, 0, time.UTC),
	}

	for _, d := range days {
		t.Run(Key(d), func(t *testing.T) {
			shapes := []any{
				d,
				Serial(d),
				Key(d),
				d.Format("2/1/2006"),
			}
			for _, shape := range shapes {
				got, ok := ParseFlexible(shape)
				require.True(t, ok, "shape %v", shape)
				assert.Equal(t, Key(d), Key(got), "shape %v", shape)
			}
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "2024-08-05", Key(time.Date(2024, 8, 5, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", Key(time.Time{}))
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange("2024-08-05", "2024-08-01", "2024-08-10"))
	assert.True(t, InRange("2024-08-01", "2024-08-01", "2024-08-10"))
	assert.True(t, InRange("2024-08-10", "2024-08-01", "2024-08-10"))
	assert.False(t, InRange("2024-08-11", "2024-08-01", "2024-08-10"))
	assert.False(t, InRange("2024-07-31", "2024-08-01", "2024-08-10"))
}

func TestWeekdayFromLetter(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Weekday
		wantOK bool
	}{
		{in: "א", want: time.Sunday, wantOK: true},
		{in: "ב", want: time.Monday, wantOK: true},
		{in: "ג", want: time.Tuesday, wantOK: true},
		{in: "ד", want: time.Wednesday, wantOK: true},
		{in: "ה", want: time.Thursday, wantOK: true},
		{in: "ו", want: time.Friday, wantOK: true},
		{in: "ש", want: time.Saturday, wantOK: true},
		{in: " ה' ", want: time.Thursday, wantOK: true},
		{in: ""},
		{in: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := WeekdayFromLetter(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWeekdaysIn(t *testing.T) {
	got := WeekdaysIn(2024, time.August, time.Thursday)

	keys := make([]string, 0, len(got))
	for _, d := range got {
		keys = append(keys, Key(d))
	}
	assert.Equal(t, []string{"2024-08-01", "2024-08-08", "2024-08-15", "2024-08-22", "2024-08-29"}, keys)

	assert.Len(t, WeekdaysIn(2024, time.February, time.Thursday), 5)
	assert.Len(t, WeekdaysIn(2023, time.February, time.Wednesday), 4)
}
