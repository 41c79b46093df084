package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/report"
	"github.com/Veraticus/lessons-ledger/internal/storage"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadYAML(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return v
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, BackendSheets, s.Backend)
	assert.Equal(t, report.DefaultSheets(), s.Sheets)
	assert.Equal(t, storage.DefaultStaleLock, s.StaleLock)
	assert.True(t, strings.HasSuffix(s.DatabasePath, "lessons.db"))
	assert.NotContains(t, s.DatabasePath, "$HOME")
	require.NotNil(t, s.Location)
}

func TestLoad_File(t *testing.T) {
	v := loadYAML(t, `
backend: xlsx
xlsx:
  path: /tmp/book.xlsx
database:
  path: /tmp/journal.db
ledger:
  timezone: UTC
run:
  stale_lock: 5m
workbook:
  ledger: Lessons
columns:
  ledger:
    teacher: Teacher
`)

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, BackendXLSX, s.Backend)
	assert.Equal(t, "/tmp/book.xlsx", s.XLSXPath)
	assert.Equal(t, "/tmp/journal.db", s.DatabasePath)
	assert.Equal(t, time.UTC, s.Location)
	assert.Equal(t, 5*time.Minute, s.StaleLock)

	assert.Equal(t, "Lessons", s.Sheets.Ledger)
	assert.Equal(t, report.DefaultSheets().Courses, s.Sheets.Courses, "unset names keep defaults")
	assert.Equal(t, "Teacher", s.Ledger.Teacher)
	assert.Equal(t, "סטטוס", s.Ledger.Status)

	cfg := s.ReportConfig()
	assert.Equal(t, "Lessons", cfg.Sheets.Ledger)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Len(t, s.SheetNames(), 7)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown backend", doc: "backend: ftp"},
		{name: "xlsx without path", doc: "backend: xlsx"},
		{name: "bad timezone", doc: "ledger:\n  timezone: Mars/Olympus"},
		{name: "negative stale lock", doc: "run:\n  stale_lock: -1m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(loadYAML(t, tt.doc))
			assert.True(t, errors.Is(err, common.ErrInvalidConfig), err)
		})
	}
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend(" Memory ")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, b)

	b, err = ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, BackendSheets, b)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("LESSONS_TEST_DIR", "/data")
	assert.Equal(t, "/data/book.xlsx", ExpandPath("$LESSONS_TEST_DIR/book.xlsx"))
	assert.Equal(t, "", ExpandPath(""))
	assert.False(t, strings.HasPrefix(ExpandPath("~/x"), "~"))
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "env-sheet")

	v := loadYAML(t, `
sheets:
  client_id: id
  client_secret: secret
  refresh_token: token
  batch_size: 50
`)
	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "env-sheet", cfg.SpreadsheetID, "env fills what the file leaves unset")
	assert.Equal(t, 50, cfg.BatchSize)

	_, err = LoadSheetsConfig(viper.New())
	assert.Error(t, err, "no credentials")
}
