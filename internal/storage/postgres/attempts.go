package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/storage"
)

const attemptColumns = `id, user_id, email, attempt_count, is_locked, cooldown_until, last_attempt_time, ip_address`

// WithinLogin serializes logins for one email with a transaction-scoped
// advisory lock, so even the first insert of a ledger row cannot race.
func (s *Store) WithinLogin(ctx context.Context, email string, fn func(tx storage.LoginTx) error) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, email); err != nil {
			return fmt.Errorf("lock login ledger: %w", err)
		}
		return fn(&loginTx{tx: tx, email: email})
	})
}

// FindAttempt returns the current ledger row for email.
func (s *Store) FindAttempt(ctx context.Context, email string) (models.AttemptRecord, error) {
	const query = `SELECT ` + attemptColumns + ` FROM login_attempts WHERE email = $1`
	rec, err := scanAttempt(s.db.QueryRow(ctx, query, email))
	if err != nil {
		return models.AttemptRecord{}, translate(err)
	}
	return rec, nil
}

// ListLoginEvents returns the newest login history rows.
func (s *Store) ListLoginEvents(ctx context.Context, filter storage.LoginEventFilter) ([]models.LoginEvent, error) {
	const query = `
		SELECT id, user_id, email, attempt_count, outcome, is_locked, ip_address, occurred_at
		FROM login_history
		WHERE ($1::bigint = 0 OR user_id = $1)
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2`
	rows, err := s.db.Query(ctx, query, filter.UserID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list login events: %w", err)
	}
	defer rows.Close()

	events := []models.LoginEvent{}
	for rows.Next() {
		var ev models.LoginEvent
		var outcome string
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Email, &ev.AttemptCount, &outcome,
			&ev.Locked, &ev.SourceAddr, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan login event: %w", err)
		}
		ev.Outcome = models.LoginOutcome(outcome)
		events = append(events, ev)
	}
	return events, rows.Err()
}

type loginTx struct {
	tx    pgx.Tx
	email string
}

func (l *loginTx) Attempt(ctx context.Context) (models.AttemptRecord, bool, error) {
	const query = `SELECT ` + attemptColumns + ` FROM login_attempts WHERE email = $1 FOR UPDATE`
	rec, err := scanAttempt(l.tx.QueryRow(ctx, query, l.email))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AttemptRecord{Email: l.email}, false, nil
	}
	if err != nil {
		return models.AttemptRecord{}, false, fmt.Errorf("load login attempt: %w", err)
	}
	return rec, true, nil
}

func (l *loginTx) User(ctx context.Context) (models.User, error) {
	return findUserByEmail(ctx, l.tx, l.email)
}

func (l *loginTx) SaveAttempt(ctx context.Context, rec models.AttemptRecord) error {
	const query = `
		INSERT INTO login_attempts (user_id, email, attempt_count, is_locked, cooldown_until, last_attempt_time, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			user_id = COALESCE(EXCLUDED.user_id, login_attempts.user_id),
			attempt_count = EXCLUDED.attempt_count,
			is_locked = EXCLUDED.is_locked,
			cooldown_until = EXCLUDED.cooldown_until,
			last_attempt_time = EXCLUDED.last_attempt_time,
			ip_address = EXCLUDED.ip_address`
	_, err := l.tx.Exec(ctx, query, rec.UserID, l.email, rec.FailureCount, rec.Locked,
		rec.CooldownUntil, rec.LastAttemptAt, rec.SourceAddr)
	if err != nil {
		return fmt.Errorf("save login attempt: %w", err)
	}
	return nil
}

func (l *loginTx) AppendEvent(ctx context.Context, ev models.LoginEvent) error {
	const query = `
		INSERT INTO login_history (user_id, email, attempt_count, outcome, is_locked, ip_address, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := l.tx.Exec(ctx, query, ev.UserID, l.email, ev.AttemptCount, string(ev.Outcome),
		ev.Locked, ev.SourceAddr, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("append login event: %w", err)
	}
	return nil
}

func scanAttempt(row scanner) (models.AttemptRecord, error) {
	var rec models.AttemptRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Email, &rec.FailureCount, &rec.Locked,
		&rec.CooldownUntil, &rec.LastAttemptAt, &rec.SourceAddr)
	return rec, err
}
