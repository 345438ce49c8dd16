// Package service holds the application logic between handlers and storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/auth"
	"github.com/hongminglow/staff-be/internal/lockout"
	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/models/dto"
	"github.com/hongminglow/staff-be/internal/storage"
)

const invalidCredentials = "Invalid email or password"

// Authenticator verifies credentials under the lockout policy and issues tokens.
type Authenticator struct {
	users    storage.UserStore
	attempts storage.AttemptStore
	hasher   auth.PasswordHasher
	tokens   *auth.TokenManager
	policy   lockout.Policy
	now      func() time.Time
}

// NewAuthenticator wires the authenticator.
func NewAuthenticator(users storage.UserStore, attempts storage.AttemptStore, hasher auth.PasswordHasher,
	tokens *auth.TokenManager, policy lockout.Policy) *Authenticator {
	return &Authenticator{
		users:    users,
		attempts: attempts,
		hasher:   hasher,
		tokens:   tokens,
		policy:   policy,
		now:      time.Now,
	}
}

// WithClock returns a copy reading time from now.
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	cp := *a
	cp.now = now
	return &cp
}

// Register creates a regular user and logs them in.
func (a *Authenticator) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return dto.AuthResponse{}, apperr.Validation("Missing required fields")
	}
	digest, err := a.hasher.Hash(req.Password)
	if err != nil {
		return dto.AuthResponse{}, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}
	created, err := a.users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		Role:         models.UserRole,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return dto.AuthResponse{}, apperr.Conflict("Email already exists")
		}
		return dto.AuthResponse{}, apperr.Internal(err)
	}
	return a.issue(created)
}

// Login runs one attempt through the ledger. The ledger row and the history
// entry are committed before a token is minted or a rejection returned.
func (a *Authenticator) Login(ctx context.Context, email, password, source string) (dto.AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return dto.AuthResponse{}, apperr.Validation("Missing email or password")
	}

	var (
		user      models.User
		rejection *apperr.Error
	)
	err := a.attempts.WithinLogin(ctx, email, func(tx storage.LoginTx) error {
		now := a.now()
		rec, found, err := tx.Attempt(ctx)
		if err != nil {
			return err
		}
		if found && a.policy.Expire(&rec, now) {
			if err := tx.SaveAttempt(ctx, rec); err != nil {
				return err
			}
		}
		if a.policy.IsLocked(rec, now) {
			retry := a.policy.RetryAfter(rec, now)
			rejection = lockedError(fmt.Sprintf("Account locked. Try again in %d seconds", retry), retry)
			return nil
		}

		candidate, err := tx.User(ctx)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		known := err == nil
		if known {
			rec.UserID = &candidate.ID
		}

		if known && a.hasher.Verify(candidate.PasswordHash, password) {
			a.policy.Succeed(&rec, now, source)
			if found {
				if err := tx.SaveAttempt(ctx, rec); err != nil {
					return err
				}
			}
			user = candidate
			return tx.AppendEvent(ctx, models.LoginEvent{
				UserID:     rec.UserID,
				Outcome:    models.LoginSucceeded,
				SourceAddr: source,
				OccurredAt: now,
			})
		}

		verdict := a.policy.Fail(&rec, found, now, source)
		if err := tx.SaveAttempt(ctx, rec); err != nil {
			return err
		}
		outcome := models.LoginFailed
		if rec.Locked {
			outcome = models.LoginLocked
		}
		if err := tx.AppendEvent(ctx, models.LoginEvent{
			UserID:       rec.UserID,
			AttemptCount: rec.FailureCount,
			Outcome:      outcome,
			Locked:       rec.Locked,
			SourceAddr:   source,
			OccurredAt:   now,
		}); err != nil {
			return err
		}
		rejection = a.reject(verdict)
		return nil
	})
	if err != nil {
		return dto.AuthResponse{}, apperr.Internal(fmt.Errorf("login %s: %w", email, err))
	}
	if rejection != nil {
		return dto.AuthResponse{}, rejection
	}
	return a.issue(user)
}

// Verify returns the summary of the token holder.
func (a *Authenticator) Verify(ctx context.Context, userID int64) (models.UserSummary, error) {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.UserSummary{}, apperr.NotFound("User not found")
		}
		return models.UserSummary{}, apperr.Internal(err)
	}
	return user.Summary(), nil
}

func (a *Authenticator) issue(user models.User) (dto.AuthResponse, error) {
	token, _, err := a.tokens.Generate(user)
	if err != nil {
		return dto.AuthResponse{}, apperr.Internal(err)
	}
	return dto.AuthResponse{User: user.Summary(), Token: token}, nil
}

func (a *Authenticator) reject(v lockout.Verdict) *apperr.Error {
	switch v.Kind {
	case lockout.LockedOut:
		return lockedError(fmt.Sprintf("Account locked due to too many failed attempts. Try again in %d seconds", v.RetryAfter), v.RetryAfter)
	case lockout.Warn:
		msg := fmt.Sprintf("%s. Warning: %d more attempts before %d-second cooldown",
			invalidCredentials, v.AttemptsRemaining, int(a.policy.Cooldown.Seconds()))
		return apperr.Unauthorized("", msg).
			With("attempts_remaining", v.AttemptsRemaining).
			With("warning", true)
	case lockout.Remaining:
		return apperr.Unauthorized("", invalidCredentials).With("attempts_remaining", v.AttemptsRemaining)
	default:
		return apperr.Unauthorized("", invalidCredentials)
	}
}

func lockedError(message string, retryAfter int) *apperr.Error {
	return apperr.Locked(message).
		With("locked", true).
		With("remaining_cooldown", retryAfter)
}
