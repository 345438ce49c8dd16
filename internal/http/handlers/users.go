package handlers

import (
	"net/http"

	"github.com/hongminglow/staff-be/internal/http/respond"
	"github.com/hongminglow/staff-be/internal/models/dto"
	"github.com/hongminglow/staff-be/internal/service"
)

// UserHandler serves user administration.
type UserHandler struct {
	registry *service.Registry
}

func NewUserHandler(registry *service.Registry) *UserHandler {
	return &UserHandler{registry: registry}
}

func (h *UserHandler) Register(mux *http.ServeMux, protect Protect) {
	mux.Handle("GET /api/users", protect(http.HandlerFunc(h.handleList)))
	mux.Handle("POST /api/users", protect(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /api/users/{id}", protect(http.HandlerFunc(h.handleGet)))
	mux.Handle("DELETE /api/users/{id}", protect(http.HandlerFunc(h.handleDelete)))
	mux.Handle("PUT /api/users/{id}/password", protect(http.HandlerFunc(h.handleChangePassword)))
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.registry.ListUsers(r.Context(), callerID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	created, err := h.registry.CreateUser(r.Context(), callerID(r), req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	user, err := h.registry.GetUser(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.registry.DeleteUser(r.Context(), callerID(r), id); err != nil {
		respond.Error(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "User deleted")
}

func (h *UserHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req dto.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.registry.ChangePassword(r.Context(), callerID(r), id, req.Password, clientAddr(r)); err != nil {
		respond.Error(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "Password updated")
}
