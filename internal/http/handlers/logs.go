package handlers

import (
	"net/http"

	"github.com/hongminglow/staff-be/internal/http/respond"
	"github.com/hongminglow/staff-be/internal/service"
)

// LogHandler exposes the login history and password logs.
type LogHandler struct {
	registry *service.Registry
}

func NewLogHandler(registry *service.Registry) *LogHandler {
	return &LogHandler{registry: registry}
}

func (h *LogHandler) Register(mux *http.ServeMux, protect Protect) {
	mux.Handle("GET /api/login-logs", protect(http.HandlerFunc(h.handleLoginLogs)))
	mux.Handle("GET /api/login-logs/user/{id}", protect(http.HandlerFunc(h.handleUserLoginLogs)))
	mux.Handle("GET /api/password-logs", protect(http.HandlerFunc(h.handlePasswordLogs)))
	mux.Handle("GET /api/password-logs/user/{id}", protect(http.HandlerFunc(h.handleUserPasswordLogs)))
}

func (h *LogHandler) handleLoginLogs(w http.ResponseWriter, r *http.Request) {
	events, err := h.registry.LoginLogs(r.Context(), callerID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}

func (h *LogHandler) handleUserLoginLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	events, err := h.registry.UserLoginLogs(r.Context(), callerID(r), id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}

func (h *LogHandler) handlePasswordLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.registry.PasswordLogs(r.Context(), callerID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, logs)
}

func (h *LogHandler) handleUserPasswordLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	logs, err := h.registry.UserPasswordLogs(r.Context(), callerID(r), id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, logs)
}
