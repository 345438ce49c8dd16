package service

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/auth"
	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/storage"
)

// Registry serves the user, employee and audit operations behind the guard.
// Callers are identified by the user id the guard extracted; role checks
// happen here, per operation.
type Registry struct {
	users     storage.UserStore
	attempts  storage.AttemptStore
	employees storage.EmployeeStore
	hasher    auth.PasswordHasher
	now       func() time.Time
}

// NewRegistry wires the registry over a store.
func NewRegistry(store storage.Store, hasher auth.PasswordHasher) *Registry {
	return &Registry{
		users:     store,
		attempts:  store,
		employees: store,
		hasher:    hasher,
		now:       time.Now,
	}
}

// WithClock returns a copy reading time from now.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	cp := *r
	cp.now = now
	return &cp
}

var errForbidden = apperr.Forbidden("Unauthorized")

// caller loads the acting user. A token for a deleted user is treated as forbidden.
func (r *Registry) caller(ctx context.Context, id int64) (models.User, error) {
	user, err := r.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, errForbidden
		}
		return models.User{}, apperr.Internal(err)
	}
	return user, nil
}

func (r *Registry) requireAdmin(ctx context.Context, callerID int64) (models.User, error) {
	user, err := r.caller(ctx, callerID)
	if err != nil {
		return models.User{}, err
	}
	if !user.IsAdmin() {
		return models.User{}, errForbidden
	}
	return user, nil
}

func (r *Registry) requireSelfOrAdmin(ctx context.Context, callerID, targetID int64) (models.User, error) {
	user, err := r.caller(ctx, callerID)
	if err != nil {
		return models.User{}, err
	}
	if !user.IsAdmin() && user.ID != targetID {
		return models.User{}, errForbidden
	}
	return user, nil
}
