package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)
	slog.New(h).Info("hello", "run_id", "RUN-1")
	assert.Contains(t, buf.String(), `"run_id":"RUN-1"`)

	_, err = NewHandler(&buf, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestConfigError(t *testing.T) {
	err := fmt.Errorf("load: %w", &ConfigError{Sheet: "courses", Column: "יום"})
	assert.True(t, errors.Is(err, ErrMissingConfig))
	assert.Contains(t, err.Error(), `"יום"`)
	assert.Equal(t, `missing sheet "courses"`, (&ConfigError{Sheet: "courses"}).Error())
}

func TestUserError(t *testing.T) {
	err := NewUserError("Could not open the workbook", ErrSheetNotFound)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
	assert.Equal(t, "Could not open the workbook: sheet not found", err.Error())
}

func TestWithRetry(t *testing.T) {
	fast := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, fast)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors stop immediately", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return Permanent(ErrSheetNotFound)
		}, fast)
		assert.True(t, errors.Is(err, ErrSheetNotFound))
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return errors.New("down")
		}, fast)
		assert.True(t, errors.Is(err, ErrMaxRetries))
		assert.Equal(t, 3, calls)
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, func() error { return errors.New("down") },
			service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: time.Second})
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
