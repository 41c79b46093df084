package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in      string
		want    Month
		wantErr bool
	}{
		{in: "08-2024", want: Month{Year: 2024, Month: time.August}},
		{in: "8-2024", want: Month{Year: 2024, Month: time.August}},
		{in: "2024-08", want: Month{Year: 2024, Month: time.August}},
		{in: " 12-2025 ", want: Month{Year: 2025, Month: time.December}},
		{in: "00-2024", wantErr: true},
		{in: "2024", wantErr: true},
		{in: "aa-bbbb", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMonth(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonth(t *testing.T) {
	aug := Month{Year: 2024, Month: time.August}
	assert.Equal(t, "08-2024", aug.String())
	assert.Equal(t, "אוגוסט 2024", aug.Label())
	assert.Equal(t, 31, aug.Days())
	assert.Equal(t, 29, Month{Year: 2024, Month: time.February}.Days())
	assert.True(t, aug.Contains(time.Date(2024, 8, 31, 23, 0, 0, 0, time.UTC)))
	assert.False(t, aug.Contains(time.Time{}))
	assert.True(t, Month{Year: 2023, Month: time.December}.Before(aug))
	assert.Equal(t, "", Month{}.String())
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("paid")
	assert.True(t, ok)
	assert.Equal(t, StatusPaid, st)

	st, ok = ParseStatus(string(StatusTransferred))
	assert.True(t, ok)
	assert.Equal(t, StatusTransferred, st)

	_, ok = ParseStatus("done")
	assert.False(t, ok)
}

func TestParseFrequency(t *testing.T) {
	assert.Equal(t, FrequencyUnspecified, ParseFrequency("  "))
	assert.Equal(t, FrequencyBiweekly, ParseFrequency("כל שבועיים"))
	assert.Equal(t, FrequencyBiweekly, ParseFrequency("Every-2 weeks"))
	assert.Equal(t, FrequencyWeekly, ParseFrequency("שבועי"))
}

func TestIsYes(t *testing.T) {
	assert.True(t, IsYes("כן", ""))
	assert.True(t, IsYes(" חריג ", "חריג"))
	assert.False(t, IsYes("", "חריג"))
	assert.False(t, IsYes("לא", ""))
}
