package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/models/dto"
	"github.com/hongminglow/staff-be/internal/storage"
)

const passwordModule = "user_management"

// ListUsers returns all users to an admin.
func (r *Registry) ListUsers(ctx context.Context, callerID int64) ([]models.User, error) {
	if _, err := r.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	users, err := r.users.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

// GetUser returns one user to any authenticated caller.
func (r *Registry) GetUser(ctx context.Context, id int64) (models.User, error) {
	user, err := r.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, userError(err)
	}
	return user, nil
}

// CreateUser lets an admin add a user with any valid role.
func (r *Registry) CreateUser(ctx context.Context, callerID int64, req dto.CreateUserRequest) (models.User, error) {
	if _, err := r.requireAdmin(ctx, callerID); err != nil {
		return models.User{}, err
	}
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return models.User{}, apperr.Validation("Missing required fields")
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = models.UserRole
	}
	if !models.ValidRole(role) {
		return models.User{}, apperr.Validation("Role must be admin or user")
	}
	digest, err := r.hasher.Hash(req.Password)
	if err != nil {
		return models.User{}, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}
	created, err := r.users.CreateUser(ctx, models.User{Name: name, Email: email, Role: role, PasswordHash: digest})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, apperr.Conflict("Email already exists")
		}
		return models.User{}, apperr.Internal(err)
	}
	return created, nil
}

// DeleteUser lets an admin remove another user without audit history.
func (r *Registry) DeleteUser(ctx context.Context, callerID, id int64) error {
	if _, err := r.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if callerID == id {
		return apperr.Validation("Cannot delete your own account")
	}
	if err := r.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrInUse) {
			return apperr.Conflict("User has login or password history and cannot be deleted")
		}
		return userError(err)
	}
	return nil
}

// ChangePassword replaces a user's password. Admins may reset anyone's,
// users only their own; both leave a password log entry.
func (r *Registry) ChangePassword(ctx context.Context, callerID, targetID int64, password, source string) error {
	actor, err := r.requireSelfOrAdmin(ctx, callerID, targetID)
	if err != nil {
		return err
	}
	if password == "" {
		return apperr.Validation("Password is required")
	}
	digest, err := r.hasher.Hash(password)
	if err != nil {
		return apperr.Internal(fmt.Errorf("hash password: %w", err))
	}
	action := models.PasswordChanged
	if actor.ID != targetID {
		action = models.PasswordReset
	}
	err = r.users.ChangePassword(ctx, models.PasswordLog{
		UserID:          targetID,
		Action:          action,
		ChangedByUserID: &actor.ID,
		ChangedByName:   actor.Name,
		Module:          passwordModule,
		NewPasswordHash: digest,
		SourceAddr:      source,
		Timestamp:       r.now(),
	})
	if err != nil {
		return userError(err)
	}
	return nil
}

func userError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return apperr.Internal(err)
}
