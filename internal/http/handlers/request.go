package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/auth"
	"github.com/hongminglow/staff-be/internal/middleware"
)

const maxBodyBytes = 1 << 20

// Protect is applied to every route that needs a bearer token.
type Protect = middleware.Middleware

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		return apperr.Validation("Invalid JSON payload")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid " + name).With("field", name)
	}
	return id, nil
}

// callerID is only called behind RequireAuth.
func callerID(r *http.Request) int64 {
	id, _ := auth.UserIDFrom(r.Context())
	return id
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
