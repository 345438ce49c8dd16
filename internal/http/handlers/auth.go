package handlers

import (
	"net/http"

	"github.com/hongminglow/staff-be/internal/http/respond"
	"github.com/hongminglow/staff-be/internal/models/dto"
	"github.com/hongminglow/staff-be/internal/service"
)

// AuthHandler owns the register, login and verify endpoints.
type AuthHandler struct {
	auth *service.Authenticator
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth *service.Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux, protect Protect) {
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.Handle("GET /api/auth/verify", protect(http.HandlerFunc(h.handleVerify)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	resp, err := h.auth.Register(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	resp, err := h.auth.Login(r.Context(), req.Email, req.Password, clientAddr(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	summary, err := h.auth.Verify(r.Context(), callerID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, summary)
}
