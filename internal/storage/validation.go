package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/lessons-ledger/internal/service"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrInvalidEntry = errors.New("invalid log entry")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateEntry rejects log entries that could not be attributed to a run.
func validateEntry(i int, e service.LogEntry) error {
	switch {
	case strings.TrimSpace(e.RunID) == "":
		return fmt.Errorf("%w %d: missing run id", ErrInvalidEntry, i)
	case e.Level == "":
		return fmt.Errorf("%w %d: missing level", ErrInvalidEntry, i)
	case e.Timestamp.IsZero():
		return fmt.Errorf("%w %d: missing timestamp", ErrInvalidEntry, i)
	}
	return nil
}
