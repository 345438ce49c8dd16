package handlers

import (
	"net/http"

	"github.com/hongminglow/staff-be/internal/http/respond"
	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/models/dto"
	"github.com/hongminglow/staff-be/internal/service"
)

// EmployeeHandler serves the employee registry and its archive.
type EmployeeHandler struct {
	registry *service.Registry
}

func NewEmployeeHandler(registry *service.Registry) *EmployeeHandler {
	return &EmployeeHandler{registry: registry}
}

func (h *EmployeeHandler) Register(mux *http.ServeMux, protect Protect) {
	mux.Handle("GET /api/employees", protect(http.HandlerFunc(h.handleList)))
	mux.Handle("POST /api/employees", protect(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /api/employees/statistics", protect(http.HandlerFunc(h.handleStats)))
	mux.Handle("GET /api/employees/departments", protect(http.HandlerFunc(h.handleDepartments)))
	mux.Handle("GET /api/employees/{id}", protect(http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT /api/employees/{id}", protect(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /api/employees/{id}", protect(http.HandlerFunc(h.handleArchive)))
	mux.Handle("GET /api/deleted-employees", protect(http.HandlerFunc(h.handleListArchived)))
	mux.Handle("POST /api/deleted-employees/{id}/restore", protect(http.HandlerFunc(h.handleRestore)))
}

func (h *EmployeeHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := service.ParseEmployeeQuery(r.URL.Query())
	if err != nil {
		respond.Error(w, err)
		return
	}
	employees, err := h.registry.ListEmployees(r.Context(), q)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, employees)
}

func (h *EmployeeHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEmployeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	created, err := h.registry.CreateEmployee(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *EmployeeHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	e, err := h.registry.GetEmployee(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	var patch models.EmployeePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respond.Error(w, err)
		return
	}
	updated, err := h.registry.UpdateEmployee(r.Context(), id, patch)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

func (h *EmployeeHandler) handleArchive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.registry.ArchiveEmployee(r.Context(), callerID(r), id, r.URL.Query().Get("reason")); err != nil {
		respond.Error(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "Employee deleted and moved to archive")
}

func (h *EmployeeHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.registry.EmployeeStats(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}

func (h *EmployeeHandler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.registry.Departments(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, departments)
}

func (h *EmployeeHandler) handleListArchived(w http.ResponseWriter, r *http.Request) {
	archived, err := h.registry.ArchivedEmployees(r.Context(), callerID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, archived)
}

func (h *EmployeeHandler) handleRestore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	if _, err := h.registry.RestoreEmployee(r.Context(), callerID(r), id); err != nil {
		respond.Error(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "Employee restored")
}
