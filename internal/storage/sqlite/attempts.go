package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/storage"
)

const attemptColumns = `id, user_id, email, attempt_count, is_locked, cooldown_until, last_attempt_time, ip_address`

// WithinLogin runs fn on the store's only connection. Other logins queue on
// the pool until the transaction ends.
func (s *Store) WithinLogin(ctx context.Context, email string, fn func(tx storage.LoginTx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&loginTx{tx: tx, email: email})
	})
}

// FindAttempt returns the current ledger row for email.
func (s *Store) FindAttempt(ctx context.Context, email string) (models.AttemptRecord, error) {
	rec, err := scanAttempt(s.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM login_attempts WHERE email = ?`, email))
	if err != nil {
		return models.AttemptRecord{}, translate(err)
	}
	return rec, nil
}

// ListLoginEvents returns the newest login history rows.
func (s *Store) ListLoginEvents(ctx context.Context, filter storage.LoginEventFilter) ([]models.LoginEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, email, attempt_count, outcome, is_locked, ip_address, occurred_at
		FROM login_history
		WHERE (? = 0 OR user_id = ?)
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, filter.UserID, filter.UserID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list login events: %w", err)
	}
	defer rows.Close()

	events := []models.LoginEvent{}
	for rows.Next() {
		var (
			ev      models.LoginEvent
			userID  sql.NullInt64
			outcome string
			at      int64
		)
		if err := rows.Scan(&ev.ID, &userID, &ev.Email, &ev.AttemptCount, &outcome,
			&ev.Locked, &ev.SourceAddr, &at); err != nil {
			return nil, fmt.Errorf("scan login event: %w", err)
		}
		ev.UserID = idFromNull(userID)
		ev.Outcome = models.LoginOutcome(outcome)
		ev.OccurredAt = fromMillis(at)
		events = append(events, ev)
	}
	return events, rows.Err()
}

type loginTx struct {
	tx    *sql.Tx
	email string
}

func (l *loginTx) Attempt(ctx context.Context) (models.AttemptRecord, bool, error) {
	rec, err := scanAttempt(l.tx.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM login_attempts WHERE email = ?`, l.email))
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err := l.tx.ExecContext(ctx, `
		INSERT INTO login_attempts (user_id, email, attempt_count, is_locked, cooldown_until, last_attempt_time, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			user_id = COALESCE(excluded.user_id, login_attempts.user_id),
			attempt_count = excluded.attempt_count,
			is_locked = excluded.is_locked,
			cooldown_until = excluded.cooldown_until,
			last_attempt_time = excluded.last_attempt_time,
			ip_address = excluded.ip_address`,
		nullID(rec.UserID), l.email, rec.FailureCount, rec.Locked,
		nullMillis(rec.CooldownUntil), toMillis(rec.LastAttemptAt), rec.SourceAddr)
	if err != nil {
		return fmt.Errorf("save login attempt: %w", err)
	}
	return nil
}

func (l *loginTx) AppendEvent(ctx context.Context, ev models.LoginEvent) error {
	_, err := l.tx.ExecContext(ctx, `
		INSERT INTO login_history (user_id, email, attempt_count, outcome, is_locked, ip_address, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullID(ev.UserID), l.email, ev.AttemptCount, string(ev.Outcome),
		ev.Locked, ev.SourceAddr, toMillis(ev.OccurredAt))
	if err != nil {
		return fmt.Errorf("append login event: %w", err)
	}
	return nil
}

func scanAttempt(row scanner) (models.AttemptRecord, error) {
	var (
		rec      models.AttemptRecord
		userID   sql.NullInt64
		cooldown sql.NullInt64
		last     int64
	)
	if err := row.Scan(&rec.ID, &userID, &rec.Email, &rec.FailureCount, &rec.Locked,
		&cooldown, &last, &rec.SourceAddr); err != nil {
		return models.AttemptRecord{}, err
	}
	rec.UserID = idFromNull(userID)
	rec.CooldownUntil = timeFromNull(cooldown)
	rec.LastAttemptAt = fromMillis(last)
	return rec, nil
}
