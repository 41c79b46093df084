package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/report"
	"github.com/Veraticus/lessons-ledger/internal/roster"
	"github.com/Veraticus/lessons-ledger/internal/storage"
	"github.com/spf13/viper"
)

// Backend selects where the workbook lives.
type Backend string

// Backends.
const (
	BackendSheets Backend = "sheets"
	BackendXLSX   Backend = "xlsx"
	BackendMemory Backend = "memory"
)

// ParseBackend validates a backend name. Blank means sheets.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendSheets, BackendXLSX, BackendMemory:
		return b, nil
	case "":
		return BackendSheets, nil
	default:
		return "", fmt.Errorf("%w: unknown backend %q", common.ErrInvalidConfig, s)
	}
}

// DefaultDatabasePath is the journal location when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/lessons/lessons.db"

// Settings is everything the CLI needs besides the store credentials.
type Settings struct {
	Location     *time.Location
	Backend      Backend
	XLSXPath     string
	DatabasePath string
	Sheets       report.Sheets
	Ledger       ledger.Columns
	Courses      roster.CourseColumns
	Private      roster.PrivateColumns
	Exceptions   roster.ExceptionColumns
	StaleLock    time.Duration
}

// Load reads Settings from v. Sheet and column names that are not configured keep the
// workbook defaults.
func Load(v *viper.Viper) (Settings, error) {
	def := report.DefaultConfig()
	s := Settings{
		Sheets:     def.Sheets,
		Ledger:     def.Ledger,
		Courses:    def.Courses,
		Private:    def.Private,
		Exceptions: def.Exceptions,
		StaleLock:  storage.DefaultStaleLock,
	}

	backend, err := ParseBackend(v.GetString("backend"))
	if err != nil {
		return s, err
	}
	s.Backend = backend

	s.XLSXPath = ExpandPath(v.GetString("xlsx.path"))
	if s.Backend == BackendXLSX && s.XLSXPath == "" {
		return s, fmt.Errorf("%w: xlsx.path is required for the xlsx backend", common.ErrInvalidConfig)
	}

	s.DatabasePath = v.GetString("database.path")
	if s.DatabasePath == "" {
		s.DatabasePath = DefaultDatabasePath
	}
	s.DatabasePath = ExpandPath(s.DatabasePath)

	tz := v.GetString("ledger.timezone")
	if tz == "" {
		s.Location = def.Location
	} else if s.Location, err = time.LoadLocation(tz); err != nil {
		return s, fmt.Errorf("%w: ledger.timezone %q: %w", common.ErrInvalidConfig, tz, err)
	}

	if v.IsSet("run.stale_lock") {
		d := v.GetDuration("run.stale_lock")
		if d <= 0 {
			return s, fmt.Errorf("%w: run.stale_lock must be positive", common.ErrInvalidConfig)
		}
		s.StaleLock = d
	}

	for key, dst := range map[string]any{
		"workbook":           &s.Sheets,
		"columns.ledger":     &s.Ledger,
		"columns.courses":    &s.Courses,
		"columns.private":    &s.Private,
		"columns.exceptions": &s.Exceptions,
	} {
		if !v.IsSet(key) {
			continue
		}
		if err := v.UnmarshalKey(key, dst); err != nil {
			return s, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, key, err)
		}
	}
	return s, nil
}

// ReportConfig builds the report service configuration from s.
func (s Settings) ReportConfig() report.Config {
	cfg := report.DefaultConfig()
	cfg.Location = s.Location
	cfg.Sheets = s.Sheets
	cfg.Ledger = s.Ledger
	cfg.Courses = s.Courses
	cfg.Private = s.Private
	cfg.Exceptions = s.Exceptions
	return cfg
}

// SheetNames lists every workbook table, ledger first.
func (s Settings) SheetNames() []string {
	n := s.Sheets
	return []string{n.Ledger, n.Courses, n.Private, n.GroupExceptions, n.PrivateExceptions, n.Log, n.Status}
}
