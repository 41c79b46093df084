// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Store errors.
	ErrNotFound      = errors.New("not found")
	ErrSheetNotFound = errors.New("sheet not found")

	// Run errors.
	ErrLocked       = errors.New("ledger is locked by another run")
	ErrRowLocked    = errors.New("row is locked for editing")
	ErrInvalidMonth = errors.New("invalid target month")
	ErrInvalidMode  = errors.New("invalid merge mode")
	ErrInvalidScope = errors.New("invalid scope")

	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("invalid status")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConfigError reports a required table or column that is absent from the workbook.
// It always matches ErrMissingConfig.
type ConfigError struct {
	Sheet  string
	Column string
}

func (e *ConfigError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("missing sheet %q", e.Sheet)
	}
	return fmt.Sprintf("sheet %q is missing column %q", e.Sheet, e.Column)
}

// Is lets errors.Is(err, ErrMissingConfig) match.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
