// Package sqlite is an embedded storage backend built on modernc.org/sqlite.
//
// SQLite allows one writer at a time, so the store keeps a single pooled
// connection. That connection is what serializes concurrent logins for the
// same email: a LoginTx holds it until commit.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hongminglow/staff-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store provides SQLite-backed persistence with the same semantics as the Postgres store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT UNIQUE NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			position TEXT NOT NULL DEFAULT '',
			salary REAL NOT NULL DEFAULT 0,
			phone TEXT NOT NULL DEFAULT '',
			hire_date TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS password_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			action TEXT NOT NULL,
			changed_by_user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
			changed_by_name TEXT NOT NULL DEFAULT '',
			module TEXT NOT NULL DEFAULT '',
			old_password_hash TEXT NOT NULL DEFAULT '',
			new_password_hash TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			timestamp INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS login_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
			email TEXT UNIQUE NOT NULL,
			attempt_count INTEGER NOT NULL DEFAULT 0 CHECK (attempt_count >= 0),
			is_locked INTEGER NOT NULL DEFAULT 0,
			cooldown_until INTEGER,
			last_attempt_time INTEGER NOT NULL,
			ip_address TEXT NOT NULL DEFAULT '',
			CHECK (is_locked = 0 OR cooldown_until IS NOT NULL)
		)`,
		`CREATE TABLE IF NOT EXISTS login_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER REFERENCES users(id),
			email TEXT NOT NULL,
			attempt_count INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			is_locked INTEGER NOT NULL DEFAULT 0,
			ip_address TEXT NOT NULL DEFAULT '',
			occurred_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS login_history_user_idx ON login_history (user_id, occurred_at)`,
		`CREATE TABLE IF NOT EXISTS deleted_employees (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id INTEGER NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			department TEXT NOT NULL DEFAULT '',
			position TEXT NOT NULL DEFAULT '',
			salary REAL NOT NULL DEFAULT 0,
			phone TEXT NOT NULL DEFAULT '',
			hire_date TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			deleted_by_user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
			deleted_by_name TEXT NOT NULL DEFAULT '',
			deleted_at INTEGER NOT NULL,
			deletion_reason TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// translate maps driver errors onto the storage sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var sqlErr *moderncsqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return storage.ErrAlreadyExists
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %s", storage.ErrInUse, sqlErr.Error())
		}
		msg := sqlErr.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return storage.ErrAlreadyExists
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return fmt.Errorf("%w: %s", storage.ErrInUse, msg)
		}
	}
	return err
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idFromNull(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
