package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/storage"
)

const userColumns = `id, name, email, role, password_hash, created_at, updated_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (name, email, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	row := s.db.QueryRow(ctx, query, user.Name, user.Email, user.Role, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, translate(err)
	}
	return created, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return findUserByEmail(ctx, s.db, email)
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

// ListUsers returns every user, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`
	rows, err := s.db.Query(ctx, query)
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
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ChangePassword swaps the digest and writes the password log in one transaction.
func (s *Store) ChangePassword(ctx context.Context, entry models.PasswordLog) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var oldHash string
		err := tx.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1 FOR UPDATE`, entry.UserID).Scan(&oldHash)
		if err != nil {
			return translate(err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
			entry.NewPasswordHash, entry.Timestamp, entry.UserID); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO password_logs (user_id, action, changed_by_user_id, changed_by_name, module,
				old_password_hash, new_password_hash, ip_address, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			entry.UserID, entry.Action, entry.ChangedByUserID, entry.ChangedByName, entry.Module,
			oldHash, entry.NewPasswordHash, entry.SourceAddr, entry.Timestamp); err != nil {
			return fmt.Errorf("insert password log: %w", err)
		}
		return nil
	})
}

// ListPasswordLogs returns the newest password log rows, optionally for one user.
func (s *Store) ListPasswordLogs(ctx context.Context, userID int64, limit int) ([]models.PasswordLog, error) {
	const query = `
		SELECT id, user_id, action, changed_by_user_id, changed_by_name, module, ip_address, timestamp
		FROM password_logs
		WHERE ($1::bigint = 0 OR user_id = $1)
		ORDER BY timestamp DESC, id DESC
		LIMIT $2`
	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list password logs: %w", err)
	}
	defer rows.Close()

	logs := []models.PasswordLog{}
	for rows.Next() {
		var entry models.PasswordLog
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.ChangedByUserID,
			&entry.ChangedByName, &entry.Module, &entry.SourceAddr, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan password log: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func findUserByEmail(ctx context.Context, q querier, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func scanUser(row scanner) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return models.User{}, err
	}
	return user, nil
}
