package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/staff-be/internal/auth"
	"github.com/hongminglow/staff-be/internal/lockout"
	"github.com/hongminglow/staff-be/internal/middleware"
	"github.com/hongminglow/staff-be/internal/models/dto"
	"github.com/hongminglow/staff-be/internal/service"
	"github.com/hongminglow/staff-be/internal/storage/postgres"
)

// TestAuthIntegration exercises register, login, verify and the lockout
// ledger against the database in DATABASE_URL.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	tokens := auth.NewTokenManager(mustGetEnv(t, "JWT_SECRET"), mustGetEnv(t, "JWT_ISSUER"), mustGetTTL(t))
	authenticator := service.NewAuthenticator(store, store, auth.NewBcryptHasher(bcrypt.MinCost), tokens, lockout.DefaultPolicy())

	mux := http.NewServeMux()
	NewAuthHandler(authenticator).Register(mux, middleware.RequireAuth(auth.NewGuard(tokens)))

	ts := httptest.NewServer(mux)
	defer ts.Close()

	stamp := time.Now().UnixNano()
	email := fmt.Sprintf("apitest_%d@example.com", stamp)
	password := fmt.Sprintf("Pass!%d", stamp)

	var registered dto.AuthResponse
	if status := postJSON(t, ts.URL+"/api/auth/register", map[string]string{
		"name": "API Test", "email": email, "password": password,
	}, &registered); status != http.StatusCreated {
		t.Fatalf("register status = %d", status)
	}
	if registered.User.Email != email || registered.User.Role != "user" {
		t.Fatalf("register mismatch: got %+v", registered.User)
	}

	var loggedIn dto.AuthResponse
	if status := postJSON(t, ts.URL+"/api/auth/login", map[string]string{"email": email, "password": password}, &loggedIn); status != http.StatusOK {
		t.Fatalf("login status = %d", status)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Fatalf("login returned wrong user id: want %d got %d", registered.User.ID, loggedIn.User.ID)
	}
	if strings.TrimSpace(loggedIn.Token) == "" {
		t.Fatal("login response missing token")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+loggedIn.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("verify request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d", resp.StatusCode)
	}

	wrong := map[string]string{"email": email, "password": "wrong"}
	for i := 1; i < 5; i++ {
		if status := postJSON(t, ts.URL+"/api/auth/login", wrong, nil); status != http.StatusUnauthorized {
			t.Fatalf("failure %d status = %d", i, status)
		}
	}
	var locked map[string]any
	if status := postJSON(t, ts.URL+"/api/auth/login", wrong, &locked); status != http.StatusTooManyRequests {
		t.Fatalf("fifth failure status = %d", status)
	}
	if locked["locked"] != true {
		t.Fatalf("fifth failure body = %v", locked)
	}

	t.Logf("registered %s (id=%d), logged in, then locked the account", email, registered.User.ID)
}

func postJSON(t *testing.T, url string, payload any, out any) int {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request to %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func mustGetTTL(t *testing.T) time.Duration {
	t.Helper()
	minutesStr := strings.TrimSpace(os.Getenv("JWT_TTL_MINUTES"))
	if minutesStr == "" {
		return 7 * 24 * time.Hour
	}
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 {
		t.Fatalf("invalid JWT_TTL_MINUTES value: %q", minutesStr)
	}
	return time.Duration(minutes) * time.Minute
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
