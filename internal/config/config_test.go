package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/staff")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL_MINUTES", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("LOGIN_WARN_AFTER", "")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "")
	t.Setenv("LOGIN_COOLDOWN_SECONDS", "")
	t.Setenv("SEED_ADMIN_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, 3, cfg.Lockout.WarnAt)
	assert.Equal(t, 5, cfg.Lockout.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Lockout.Cooldown)
	assert.Equal(t, "admin@company.com", cfg.Seed.AdminEmail)
	assert.Empty(t, cfg.Seed.AdminPassword)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL_MINUTES", "90")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:8888, http://127.0.0.1:8888 ,")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOGIN_WARN_AFTER", "2")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "4")
	t.Setenv("LOGIN_COOLDOWN_SECONDS", "60")
	t.Setenv("SEED_SAMPLE_EMPLOYEES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddress())
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:8888", "http://127.0.0.1:8888"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, 2, cfg.Lockout.WarnAt)
	assert.Equal(t, 4, cfg.Lockout.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.Lockout.Cooldown)
	assert.True(t, cfg.Seed.SampleEmployees)
}

func TestLoadIgnoresInvalidTokenTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_TTL_MINUTES", "soon")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "")
	t.Setenv("LOGIN_WARN_AFTER", "")
	t.Setenv("LOGIN_COOLDOWN_SECONDS", "")
	t.Setenv("BCRYPT_COST", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, cfg.JWTTTL)
}

func TestLoadRejectsInvalidLockoutNumbers(t *testing.T) {
	keys := []string{"LOGIN_WARN_AFTER", "LOGIN_MAX_ATTEMPTS", "LOGIN_COOLDOWN_SECONDS"}
	for _, key := range keys {
		for _, value := range []string{"0", "-30", "soon"} {
			t.Run(key+"="+value, func(t *testing.T) {
				setRequired(t)
				for _, other := range keys {
					t.Setenv(other, "")
				}
				t.Setenv("BCRYPT_COST", "")
				t.Setenv(key, value)

				_, err := Load()
				require.Error(t, err)
				assert.ErrorContains(t, err, "lockout policy")
				assert.ErrorContains(t, err, key)
			})
		}
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite::memory:")
	t.Setenv("JWT_SECRET", " ")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoadRejectsWarnAtMax(t *testing.T) {
	setRequired(t)
	t.Setenv("LOGIN_WARN_AFTER", "5")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "5")

	_, err := Load()
	assert.ErrorContains(t, err, "lockout policy")
}

func TestLoadRejectsBcryptCost(t *testing.T) {
	setRequired(t)
	t.Setenv("LOGIN_WARN_AFTER", "")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "")
	t.Setenv("BCRYPT_COST", "64")

	_, err := Load()
	assert.ErrorContains(t, err, "BCRYPT_COST")
}
