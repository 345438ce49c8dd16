package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/staff-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// DB is the subset of *pgxpool.Pool the store relies on.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// Store provides Postgres-backed persistence for users, the attempt ledger and employees.
type Store struct {
	db DB
}

// NewStore connects to databaseURL and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := New(pool)
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// New wraps an existing connection without migrating.
func New(db DB) *Store {
	return &Store{db: db}
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
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS employees (
			id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT UNIQUE NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			position TEXT NOT NULL DEFAULT '',
			salary DOUBLE PRECISION NOT NULL DEFAULT 0,
			phone TEXT NOT NULL DEFAULT '',
			hire_date TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS password_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			action TEXT NOT NULL,
			changed_by_user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
			changed_by_name TEXT NOT NULL DEFAULT '',
			module TEXT NOT NULL DEFAULT '',
			old_password_hash TEXT NOT NULL DEFAULT '',
			new_password_hash TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS login_attempts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
			email TEXT UNIQUE NOT NULL,
			attempt_count INTEGER NOT NULL DEFAULT 0 CHECK (attempt_count >= 0),
			is_locked BOOLEAN NOT NULL DEFAULT FALSE,
			cooldown_until TIMESTAMPTZ,
			last_attempt_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ip_address TEXT NOT NULL DEFAULT '',
			CHECK (NOT is_locked OR cooldown_until IS NOT NULL)
		);`,
		`CREATE TABLE IF NOT EXISTS login_history (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT REFERENCES users(id),
			email TEXT NOT NULL,
			attempt_count INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			is_locked BOOLEAN NOT NULL DEFAULT FALSE,
			ip_address TEXT NOT NULL DEFAULT '',
			occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS login_history_user_idx ON login_history (user_id, occurred_at DESC);`,
		`CREATE TABLE IF NOT EXISTS deleted_employees (
			id BIGSERIAL PRIMARY KEY,
			employee_id BIGINT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			department TEXT NOT NULL DEFAULT '',
			position TEXT NOT NULL DEFAULT '',
			salary DOUBLE PRECISION NOT NULL DEFAULT 0,
			phone TEXT NOT NULL DEFAULT '',
			hire_date TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			deleted_by_user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
			deleted_by_name TEXT NOT NULL DEFAULT '',
			deleted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deletion_reason TEXT NOT NULL DEFAULT ''
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// inTx runs fn inside a transaction, committing only when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// translate maps driver errors onto the storage sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return storage.ErrAlreadyExists
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", storage.ErrInUse, pgErr.ConstraintName)
		}
	}
	return err
}
