package service

import (
	"context"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/storage"
)

const (
	allLoginLogsLimit     = 200
	userLoginLogsLimit    = 50
	allPasswordLogsLimit  = 100
	userPasswordLogsLimit = 50
)

// LoginLogs returns the most recent login history to an admin.
func (r *Registry) LoginLogs(ctx context.Context, callerID int64) ([]models.LoginEvent, error) {
	if _, err := r.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return r.loginEvents(ctx, storage.LoginEventFilter{Limit: allLoginLogsLimit})
}

// UserLoginLogs returns one user's login history to that user or an admin.
func (r *Registry) UserLoginLogs(ctx context.Context, callerID, userID int64) ([]models.LoginEvent, error) {
	if _, err := r.requireSelfOrAdmin(ctx, callerID, userID); err != nil {
		return nil, err
	}
	return r.loginEvents(ctx, storage.LoginEventFilter{UserID: userID, Limit: userLoginLogsLimit})
}

// PasswordLogs returns the most recent password changes to an admin.
func (r *Registry) PasswordLogs(ctx context.Context, callerID int64) ([]models.PasswordLog, error) {
	if _, err := r.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return r.passwordLogs(ctx, 0, allPasswordLogsLimit)
}

// UserPasswordLogs returns one user's password changes to that user or an admin.
func (r *Registry) UserPasswordLogs(ctx context.Context, callerID, userID int64) ([]models.PasswordLog, error) {
	if _, err := r.requireSelfOrAdmin(ctx, callerID, userID); err != nil {
		return nil, err
	}
	return r.passwordLogs(ctx, userID, userPasswordLogsLimit)
}

func (r *Registry) loginEvents(ctx context.Context, filter storage.LoginEventFilter) ([]models.LoginEvent, error) {
	events, err := r.attempts.ListLoginEvents(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return events, nil
}

func (r *Registry) passwordLogs(ctx context.Context, userID int64, limit int) ([]models.PasswordLog, error) {
	logs, err := r.users.ListPasswordLogs(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return logs, nil
}
