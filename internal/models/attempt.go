package models

import "time"

// AttemptRecord is the per-email ledger row used for brute-force mitigation.
type AttemptRecord struct {
	ID            int64      `json:"id"`
	UserID        *int64     `json:"user_id,omitempty"`
	Email         string     `json:"email"`
	FailureCount  int        `json:"attempt_count"`
	Locked        bool       `json:"is_locked"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
	LastAttemptAt time.Time  `json:"last_attempt_time"`
	SourceAddr    string     `json:"ip_address"`
}

// LoginOutcome classifies a row in the login history.
type LoginOutcome string

const (
	LoginSucceeded LoginOutcome = "success"
	LoginFailed    LoginOutcome = "failure"
	LoginLocked    LoginOutcome = "locked"
)

// LoginEvent is an append-only audit entry written for every evaluated login.
type LoginEvent struct {
	ID           int64        `json:"id"`
	UserID       *int64       `json:"user_id,omitempty"`
	Email        string       `json:"email"`
	AttemptCount int          `json:"attempt_count"`
	Outcome      LoginOutcome `json:"outcome"`
	Locked       bool         `json:"is_locked"`
	SourceAddr   string       `json:"ip_address"`
	OccurredAt   time.Time    `json:"last_attempt_time"`
}
