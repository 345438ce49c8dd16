// Package respond renders JSON bodies and service errors.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/hongminglow/staff-be/internal/apperr"
)

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}

// Message writes a {"message": ...} body.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// Error renders err as {"error": ..., "code": ..., <details>}. Anything that
// is not an *apperr.Error is logged and hidden behind a 500.
func Error(w http.ResponseWriter, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		log.Printf("respond: internal error: %v", e)
	}

	body := make(map[string]any, len(e.Details)+2)
	for k, v := range e.Details {
		body[k] = v
	}
	body["error"] = e.Message
	if e.Code != "" {
		body["code"] = e.Code
	}
	if e.Kind == apperr.KindLocked {
		if secs, ok := e.Details["remaining_cooldown"].(int); ok {
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
	}
	JSON(w, e.Status(), body)
}
