// Package storage keeps the run journal and the advisory run lock in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultStaleLock is how old a run lock must be before another owner may take it over.
const DefaultStaleLock = 30 * time.Minute

// SQLiteStorage implements service.Journal and service.Locker using SQLite.
type SQLiteStorage struct {
	db        *sql.DB
	now       func() time.Time
	dbPath    string
	staleLock time.Duration
	// held tracks locks taken by this process; the run_locks rows cover other processes.
	held map[string]string
	mu   sync.Mutex
}

// NewSQLiteStorage creates a new SQLite storage instance. ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	if dbPath == ":memory:" {
		dsn = "file::memory:?_busy_timeout=5000"
	} else {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection also keeps an in-memory database alive for the storage lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:        db,
		dbPath:    dbPath,
		now:       time.Now,
		staleLock: DefaultStaleLock,
		held:      make(map[string]string),
	}, nil
}

// SetStaleLock changes the takeover age for abandoned run locks. Non-positive values are ignored.
func (s *SQLiteStorage) SetStaleLock(d time.Duration) {
	if d > 0 {
		s.staleLock = d
	}
}

// Path is the database file.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
