package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/storage"
)

const userColumns = `id, name, email, role, password_hash, created_at, updated_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	now := toMillis(s.now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, email, role, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.Role, user.PasswordHash, now, now)
	if err != nil {
		return models.User{}, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return s.FindByID(ctx, id)
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return findUserByEmail(ctx, s.db, email)
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

// ListUsers returns every user, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes a user that is no longer referenced by audit rows.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ChangePassword swaps the digest and writes the password log in one transaction.
func (s *Store) ChangePassword(ctx context.Context, entry models.PasswordLog) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var oldHash string
		if err := tx.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = ?`, entry.UserID).Scan(&oldHash); err != nil {
			return translate(err)
		}
		at := toMillis(entry.Timestamp)
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
			entry.NewPasswordHash, at, entry.UserID); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO password_logs (user_id, action, changed_by_user_id, changed_by_name, module,
				old_password_hash, new_password_hash, ip_address, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.UserID, entry.Action, nullID(entry.ChangedByUserID), entry.ChangedByName, entry.Module,
			oldHash, entry.NewPasswordHash, entry.SourceAddr, at); err != nil {
			return fmt.Errorf("insert password log: %w", err)
		}
		return nil
	})
}

// ListPasswordLogs returns the newest password log rows, optionally for one user.
func (s *Store) ListPasswordLogs(ctx context.Context, userID int64, limit int) ([]models.PasswordLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, changed_by_user_id, changed_by_name, module, ip_address, timestamp
		FROM password_logs
		WHERE (? = 0 OR user_id = ?)
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list password logs: %w", err)
	}
	defer rows.Close()

	logs := []models.PasswordLog{}
	for rows.Next() {
		var (
			entry     models.PasswordLog
			changedBy sql.NullInt64
			at        int64
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &changedBy,
			&entry.ChangedByName, &entry.Module, &entry.SourceAddr, &at); err != nil {
			return nil, fmt.Errorf("scan password log: %w", err)
		}
		entry.ChangedByUserID = idFromNull(changedBy)
		entry.Timestamp = fromMillis(at)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func findUserByEmail(ctx context.Context, q querier, email string) (models.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func scanUser(row scanner) (models.User, error) {
	var (
		user             models.User
		created, updated int64
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.PasswordHash, &created, &updated); err != nil {
		return models.User{}, err
	}
	user.CreatedAt = fromMillis(created)
	user.UpdatedAt = fromMillis(updated)
	return user, nil
}
