package models

import "time"

const (
	PasswordChanged = "password_changed"
	PasswordReset   = "password_reset"
)

// PasswordLog records a password digest change. Digests never leave the store.
type PasswordLog struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Action          string    `json:"action"`
	ChangedByUserID *int64    `json:"changed_by_user_id,omitempty"`
	ChangedByName   string    `json:"changed_by_name"`
	Module          string    `json:"module"`
	OldPasswordHash string    `json:"-"`
	NewPasswordHash string    `json:"-"`
	SourceAddr      string    `json:"ip_address,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}
