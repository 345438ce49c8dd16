package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/models/dto"
	"github.com/hongminglow/staff-be/internal/storage"
)

const (
	goodPassword = "correct-horse"
	badPassword  = "wrong"
	source       = "10.0.0.1"
)

func TestLoginLocksAfterFiveFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@b.com", goodPassword, models.UserRole)

	_, err := f.auth.Login(ctx, "a@b.com", badPassword, source)
	first := appErr(t, err, apperr.KindUnauthorized)
	assert.Equal(t, "Invalid email or password", first.Message)
	assert.NotContains(t, first.Details, "attempts_remaining")

	_, err = f.auth.Login(ctx, "a@b.com", badPassword, source)
	assert.Equal(t, 3, appErr(t, err, apperr.KindUnauthorized).Details["attempts_remaining"])

	_, err = f.auth.Login(ctx, "a@b.com", badPassword, source)
	third := appErr(t, err, apperr.KindUnauthorized)
	assert.Equal(t, 2, third.Details["attempts_remaining"])
	assert.Equal(t, true, third.Details["warning"])
	assert.Equal(t, "Invalid email or password. Warning: 2 more attempts before 30-second cooldown", third.Message)

	_, err = f.auth.Login(ctx, "a@b.com", badPassword, source)
	assert.Equal(t, 1, appErr(t, err, apperr.KindUnauthorized).Details["attempts_remaining"])

	_, err = f.auth.Login(ctx, "a@b.com", badPassword, source)
	fifth := appErr(t, err, apperr.KindLocked)
	assert.Equal(t, true, fifth.Details["locked"])
	assert.Equal(t, 30, fifth.Details["remaining_cooldown"])

	_, err = f.auth.Login(ctx, "a@b.com", goodPassword, source)
	sixth := appErr(t, err, apperr.KindLocked)
	assert.Equal(t, 30, sixth.Details["remaining_cooldown"])

	rec, err := f.store.FindAttempt(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 5, rec.FailureCount)
	assert.True(t, rec.Locked)
}

func TestLockedAccountIgnoresCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@b.com", goodPassword, models.UserRole)
	for i := 0; i < 5; i++ {
		_, _ = f.auth.Login(ctx, "a@b.com", badPassword, source)
	}

	f.clock.Advance(10 * time.Second)
	_, err := f.auth.Login(ctx, "a@b.com", goodPassword, source)
	locked := appErr(t, err, apperr.KindLocked)
	assert.Equal(t, 20, locked.Details["remaining_cooldown"])

	f.clock.Advance(19500 * time.Millisecond)
	_, err = f.auth.Login(ctx, "a@b.com", badPassword, source)
	assert.Equal(t, 1, appErr(t, err, apperr.KindLocked).Details["remaining_cooldown"])

	rec, err := f.store.FindAttempt(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 5, rec.FailureCount)
	assert.True(t, rec.Locked)
}

func TestLoginAfterCooldownStartsClean(t *testing.T) {
	lock := func(t *testing.T) *fixture {
		f := newFixture(t)
		f.addUser(t, "a@b.com", goodPassword, models.UserRole)
		for i := 0; i < 5; i++ {
			_, _ = f.auth.Login(context.Background(), "a@b.com", badPassword, source)
		}
		f.clock.Advance(30 * time.Second)
		return f
	}

	t.Run("success", func(t *testing.T) {
		f := lock(t)
		resp, err := f.auth.Login(context.Background(), "a@b.com", goodPassword, source)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)

		rec, err := f.store.FindAttempt(context.Background(), "a@b.com")
		require.NoError(t, err)
		assert.Zero(t, rec.FailureCount)
		assert.False(t, rec.Locked)
		assert.Nil(t, rec.CooldownUntil)
	})

	t.Run("failure", func(t *testing.T) {
		f := lock(t)
		_, err := f.auth.Login(context.Background(), "a@b.com", badPassword, source)
		assert.Equal(t, 4, appErr(t, err, apperr.KindUnauthorized).Details["attempts_remaining"])

		rec, err := f.store.FindAttempt(context.Background(), "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, 1, rec.FailureCount)
		assert.False(t, rec.Locked)
	})
}

func TestSuccessResetsCounter(t *testing.T) {
	for failures := 0; failures <= 4; failures++ {
		f := newFixture(t)
		ctx := context.Background()
		f.addUser(t, "a@b.com", goodPassword, models.UserRole)
		for i := 0; i < failures; i++ {
			_, _ = f.auth.Login(ctx, "a@b.com", badPassword, source)
		}

		_, err := f.auth.Login(ctx, "a@b.com", goodPassword, source)
		require.NoError(t, err, "after %d failures", failures)

		rec, err := f.store.FindAttempt(ctx, "a@b.com")
		if failures == 0 {
			assert.ErrorIs(t, err, storage.ErrNotFound)
			continue
		}
		require.NoError(t, err)
		assert.Zero(t, rec.FailureCount, "after %d failures", failures)
		assert.False(t, rec.Locked)
	}
}

func TestUnknownEmailFirstFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Login(ctx, "x@y.com", "anything", source)
	rejected := appErr(t, err, apperr.KindUnauthorized)
	assert.Equal(t, "Invalid email or password", rejected.Message)
	assert.Empty(t, rejected.Details)

	rec, err := f.store.FindAttempt(ctx, "x@y.com")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.FailureCount)
	assert.Nil(t, rec.UserID)
	assert.Equal(t, source, rec.SourceAddr)
}

func TestConcurrentFailuresAreAllCounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "a@b.com", goodPassword, models.UserRole)

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.auth.Login(ctx, "a@b.com", badPassword, source)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		appErr(t, err, apperr.KindUnauthorized)
	}
	rec, err := f.store.FindAttempt(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, n, rec.FailureCount)
}

func TestLoginIssuesSevenDayToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.addUser(t, "a@b.com", goodPassword, models.AdminRole)

	resp, err := f.auth.Login(ctx, "a@b.com", goodPassword, source)
	require.NoError(t, err)
	assert.Equal(t, models.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, Role: models.AdminRole}, resp.User)

	claims, err := f.tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.WithinDuration(t, f.clock.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Second)

	events, err := f.store.ListLoginEvents(ctx, storage.LoginEventFilter{UserID: user.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.LoginSucceeded, events[0].Outcome)
	assert.Zero(t, events[0].AttemptCount)
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Login(context.Background(), " ", goodPassword, source)
	assert.Equal(t, "Missing email or password", appErr(t, err, apperr.KindValidation).Message)

	_, err = f.auth.Login(context.Background(), "a@b.com", "", source)
	appErr(t, err, apperr.KindValidation)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Register(ctx, dto.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: goodPassword})
	require.NoError(t, err)
	assert.Equal(t, models.UserRole, resp.User.Role)
	assert.NotEmpty(t, resp.Token)

	_, err = f.auth.Register(ctx, dto.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: goodPassword})
	assert.Equal(t, "Email already exists", appErr(t, err, apperr.KindConflict).Message)

	_, err = f.auth.Register(ctx, dto.RegisterRequest{Email: "bob@example.com", Password: goodPassword})
	assert.Equal(t, "Missing required fields", appErr(t, err, apperr.KindValidation).Message)

	summary, err := f.auth.Verify(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.User, summary)

	_, err = f.auth.Verify(ctx, 999)
	appErr(t, err, apperr.KindNotFound)
}
