package middleware

import (
	"errors"
	"net/http"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/auth"
	"github.com/hongminglow/staff-be/internal/http/respond"
)

// RequireAuth rejects requests without a valid bearer token and puts the
// caller's user id on the request context.
func RequireAuth(guard *auth.Guard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := guard.Authorize(r)
			if err != nil {
				var rej *auth.Rejection
				if errors.As(err, &rej) {
					respond.Error(w, apperr.Unauthorized(rej.Code, rej.Message))
					return
				}
				respond.Error(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), id)))
		})
	}
}
