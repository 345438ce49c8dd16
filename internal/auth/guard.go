package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Rejection codes returned by the guard. All of them surface as 401.
const (
	CodeMissingToken   = "missing_token"
	CodeMalformedToken = "malformed_token"
	CodeInvalidToken   = "invalid_token"
	CodeExpiredToken   = "expired_token"
)

// Rejection explains why a request carried no usable bearer token.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string { return r.Code + ": " + r.Message }

var (
	rejectMissing   = &Rejection{Code: CodeMissingToken, Message: "Token is missing"}
	rejectMalformed = &Rejection{Code: CodeMalformedToken, Message: "Invalid token format"}
	rejectInvalid   = &Rejection{Code: CodeInvalidToken, Message: "Invalid token"}
	rejectExpired   = &Rejection{Code: CodeExpiredToken, Message: "Token has expired"}
)

// Guard validates bearer tokens on protected requests.
type Guard struct {
	tokens *TokenManager
}

// NewGuard builds a guard around the token manager.
func NewGuard(tokens *TokenManager) *Guard {
	return &Guard{tokens: tokens}
}

// Authorize returns the caller's user id or a *Rejection. It never checks roles.
func (g *Guard) Authorize(r *http.Request) (int64, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return 0, rejectMissing
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 0, rejectMalformed
	}
	claims, err := g.tokens.Parse(parts[1])
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return 0, rejectExpired
		}
		return 0, rejectInvalid
	}
	return claims.UserID, nil
}

type ctxKey struct{}

// WithUserID stores the authenticated user id on ctx.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserIDFrom returns the user id placed on ctx by the auth middleware.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok && id > 0
}
