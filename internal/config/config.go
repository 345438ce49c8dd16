package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/staff-be/internal/lockout"
)

// DefaultTokenTTL is the lifetime of a bearer token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	JWTTTL      time.Duration
	CORSOrigins []string
	StaticDir   string
	BcryptCost  int
	Lockout     lockout.Policy
	Seed        SeedConfig
}

// SeedConfig controls what Bootstrap inserts into an empty store.
type SeedConfig struct {
	AdminEmail      string
	AdminName       string
	AdminPassword   string
	SampleEmployees bool
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "staff-backend"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		StaticDir:   strings.TrimSpace(os.Getenv("STATIC_DIR")),
		Seed: SeedConfig{
			AdminEmail:      fallback(os.Getenv("SEED_ADMIN_EMAIL"), "admin@company.com"),
			AdminName:       fallback(os.Getenv("SEED_ADMIN_NAME"), "Admin User"),
			AdminPassword:   strings.TrimSpace(os.Getenv("SEED_ADMIN_PASSWORD")),
			SampleEmployees: parseBool(os.Getenv("SEED_SAMPLE_EMPLOYEES")),
		},
	}

	cfg.JWTTTL = DefaultTokenTTL
	if minutes, ok := positiveInt("JWT_TTL_MINUTES"); ok {
		cfg.JWTTTL = time.Duration(minutes) * time.Minute
	}

	cfg.BcryptCost = bcrypt.DefaultCost
	if cost, ok := positiveInt("BCRYPT_COST"); ok {
		cfg.BcryptCost = cost
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	cfg.Lockout = lockout.DefaultPolicy()
	if n, ok, err := requirePositiveInt("LOGIN_WARN_AFTER"); err != nil {
		return Config{}, fmt.Errorf("lockout policy: %w", err)
	} else if ok {
		cfg.Lockout.WarnAt = n
	}
	if n, ok, err := requirePositiveInt("LOGIN_MAX_ATTEMPTS"); err != nil {
		return Config{}, fmt.Errorf("lockout policy: %w", err)
	} else if ok {
		cfg.Lockout.MaxAttempts = n
	}
	if n, ok, err := requirePositiveInt("LOGIN_COOLDOWN_SECONDS"); err != nil {
		return Config{}, fmt.Errorf("lockout policy: %w", err)
	} else if ok {
		cfg.Lockout.Cooldown = time.Duration(n) * time.Second
	}
	if err := cfg.Lockout.Validate(); err != nil {
		return Config{}, fmt.Errorf("lockout policy: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// requirePositiveInt is positiveInt for settings where a bad value must stop startup.
func requirePositiveInt(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, true, nil
}

func parseBool(raw string) bool {
	ok, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && ok
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
