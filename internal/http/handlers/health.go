package handlers

import (
	"net/http"
	"time"

	"github.com/hongminglow/staff-be/internal/http/respond"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
	now       func() time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, now: time.Now}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	respond.JSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": now.UTC().Format(time.RFC3339),
		"uptime":    now.Sub(h.startedAt).Truncate(time.Second).String(),
	})
}
