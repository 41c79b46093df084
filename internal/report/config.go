package report

import (
	"log/slog"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/roster"
	"github.com/google/uuid"
)

// Colors used on the ledger and exception sheets.
const (
	ColorFollowUp = "#FFFF00"
	ColorOver     = "#F8D7DA"
	ColorLocked   = "#D9D9D9"
	ColorOpen     = "#FFFFFF"
)

// StatusBatchSize is how many ledger rows a bulk status transition writes at a time.
const StatusBatchSize = 50

// Sheets names the workbook tables.
type Sheets struct {
	Ledger            string `mapstructure:"ledger"`
	Courses           string `mapstructure:"courses"`
	Private           string `mapstructure:"private"`
	GroupExceptions   string `mapstructure:"group_exceptions"`
	PrivateExceptions string `mapstructure:"private_exceptions"`
	Log               string `mapstructure:"log"`
	Status            string `mapstructure:"status"`
}

// DefaultSheets returns the table names of the workbook.
func DefaultSheets() Sheets {
	return Sheets{
		Ledger:            "דיווח שיעורים",
		Courses:           "רשימת קורסים-מערכת",
		Private:           "ריכוז שיעורים פרטיים",
		GroupExceptions:   "חריגים-קבוצתי",
		PrivateExceptions: "חריגים-כללי",
		Log:               "לוג ריצות",
		Status:            "סטטוס",
	}
}

// Config holds configuration options for the report service.
type Config struct {
	Location   *time.Location
	Logger     *slog.Logger
	Clock      func() time.Time
	NewRunID   func() string
	Sheets     Sheets
	Ledger     ledger.Columns
	Courses    roster.CourseColumns
	Private    roster.PrivateColumns
	Exceptions roster.ExceptionColumns
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Location:   defaultLocation(),
		Clock:      time.Now,
		NewRunID:   NewRunID,
		Sheets:     DefaultSheets(),
		Ledger:     ledger.DefaultColumns(),
		Courses:    roster.DefaultCourseColumns(),
		Private:    roster.DefaultPrivateColumns(),
		Exceptions: roster.DefaultExceptionColumns(),
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return "RUN-" + uuid.NewString()
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Location == nil {
		c.Location = def.Location
	}
	if c.Clock == nil {
		c.Clock = def.Clock
	}
	if c.NewRunID == nil {
		c.NewRunID = def.NewRunID
	}
	if c.Sheets == (Sheets{}) {
		c.Sheets = def.Sheets
	}
	if c.Ledger == (ledger.Columns{}) {
		c.Ledger = def.Ledger
	}
	if c.Courses == (roster.CourseColumns{}) {
		c.Courses = def.Courses
	}
	if c.Private == (roster.PrivateColumns{}) {
		c.Private = def.Private
	}
	if c.Exceptions == (roster.ExceptionColumns{}) {
		c.Exceptions = def.Exceptions
	}
	return c
}
