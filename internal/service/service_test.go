package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/auth"
	"github.com/hongminglow/staff-be/internal/config"
	"github.com/hongminglow/staff-be/internal/lockout"
	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/service"
	"github.com/hongminglow/staff-be/internal/storage/sqlite"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store    *sqlite.Store
	clock    *clock
	hasher   auth.PasswordHasher
	tokens   *auth.TokenManager
	auth     *service.Authenticator
	registry *service.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "staff.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens := auth.NewTokenManager("test-secret", "staff-backend", config.DefaultTokenTTL).WithClock(clk.Now)
	return &fixture{
		store:    store,
		clock:    clk,
		hasher:   hasher,
		tokens:   tokens,
		auth:     service.NewAuthenticator(store, store, hasher, tokens, lockout.DefaultPolicy()).WithClock(clk.Now),
		registry: service.NewRegistry(store, hasher).WithClock(clk.Now),
	}
}

// addUser stores a user directly so no ledger or history rows exist yet.
func (f *fixture) addUser(t *testing.T, email, password, role string) models.User {
	t.Helper()
	digest, err := f.hasher.Hash(password)
	require.NoError(t, err)
	user, err := f.store.CreateUser(context.Background(), models.User{
		Name: "User " + email, Email: email, Role: role, PasswordHash: digest,
	})
	require.NoError(t, err)
	return user
}

func appErr(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, kind, e.Kind, "unexpected error: %v", err)
	return e
}
