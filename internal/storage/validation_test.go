package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestValidateContext(t *testing.T) {
	assert.NoError(t, validateContext(context.Background()))
	//nolint:staticcheck // nil context is the case under test
	assert.True(t, errors.Is(validateContext(nil), ErrNilContext))
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "ledger name", str: "דיווח שיעורים"},
		{name: "empty", str: "", wantErr: true},
		{name: "whitespace only", str: " \t\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "resource")
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrEmptyString))
				assert.Contains(t, err.Error(), "resource")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateEntry(t *testing.T) {
	at := time.Date(2024, 8, 20, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		entry service.LogEntry
		want  string
	}{
		{name: "complete", entry: service.LogEntry{RunID: "RUN-1", Level: "INFO", Timestamp: at}},
		{name: "no run id", entry: service.LogEntry{Level: "INFO", Timestamp: at}, want: "missing run id"},
		{name: "no level", entry: service.LogEntry{RunID: "RUN-1", Timestamp: at}, want: "missing level"},
		{name: "no timestamp", entry: service.LogEntry{RunID: "RUN-1", Level: "INFO"}, want: "missing timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEntry(3, tt.entry)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidEntry))
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "entry 3")
		})
	}
}
