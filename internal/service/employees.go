package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/models/dto"
	"github.com/hongminglow/staff-be/internal/storage"
)

const hireDateLayout = "2006-01-02"

// ParseEmployeeQuery validates listing parameters against the allow-lists.
func ParseEmployeeQuery(values url.Values) (storage.EmployeeQuery, error) {
	q := storage.EmployeeQuery{
		Search:     strings.TrimSpace(values.Get("search")),
		Department: strings.TrimSpace(values.Get("department")),
	}
	if raw := strings.TrimSpace(values.Get("isActive")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return storage.EmployeeQuery{}, apperr.Validation("isActive must be true or false")
		}
		q.Active = &active
	}
	col, err := storage.ParseSortColumn(values.Get("sortBy"))
	if err != nil {
		return storage.EmployeeQuery{}, apperr.Validation("Invalid sortBy parameter").With("field", "sortBy")
	}
	order, err := storage.ParseSortOrder(values.Get("order"))
	if err != nil {
		return storage.EmployeeQuery{}, apperr.Validation("Invalid order parameter").With("field", "order")
	}
	q.SortBy = col
	q.Order = order
	return q, nil
}

// ListEmployees returns the filtered, sorted registry.
func (r *Registry) ListEmployees(ctx context.Context, q storage.EmployeeQuery) ([]models.Employee, error) {
	employees, err := r.employees.ListEmployees(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return employees, nil
}

// GetEmployee returns one employee.
func (r *Registry) GetEmployee(ctx context.Context, id int64) (models.Employee, error) {
	e, err := r.employees.GetEmployee(ctx, id)
	if err != nil {
		return models.Employee{}, employeeError(err)
	}
	return e, nil
}

// CreateEmployee adds an active employee. hire_date defaults to today.
func (r *Registry) CreateEmployee(ctx context.Context, req dto.CreateEmployeeRequest) (models.Employee, error) {
	e := models.Employee{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      strings.TrimSpace(req.Email),
		Department: strings.TrimSpace(req.Department),
		Position:   strings.TrimSpace(req.Position),
		Salary:     req.Salary,
		Phone:      strings.TrimSpace(req.Phone),
		HireDate:   strings.TrimSpace(req.HireDate),
		Address:    strings.TrimSpace(req.Address),
		IsActive:   true,
	}
	if e.FirstName == "" || e.Email == "" {
		return models.Employee{}, apperr.Validation("Missing required fields")
	}
	if e.HireDate == "" {
		e.HireDate = r.now().Format(hireDateLayout)
	}
	if err := checkHireDate(e.HireDate); err != nil {
		return models.Employee{}, err
	}
	if err := checkSalary(e.Salary); err != nil {
		return models.Employee{}, err
	}
	created, err := r.employees.CreateEmployee(ctx, e)
	if err != nil {
		return models.Employee{}, employeeError(err)
	}
	return created, nil
}

// UpdateEmployee applies a partial update.
func (r *Registry) UpdateEmployee(ctx context.Context, id int64, patch models.EmployeePatch) (models.Employee, error) {
	if patch.Empty() {
		return models.Employee{}, apperr.Validation("No fields to update")
	}
	if patch.FirstName != nil && strings.TrimSpace(*patch.FirstName) == "" {
		return models.Employee{}, apperr.Validation("first_name cannot be empty")
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return models.Employee{}, apperr.Validation("email cannot be empty")
	}
	if patch.HireDate != nil {
		if err := checkHireDate(*patch.HireDate); err != nil {
			return models.Employee{}, err
		}
	}
	if patch.Salary != nil {
		if err := checkSalary(*patch.Salary); err != nil {
			return models.Employee{}, err
		}
	}
	updated, err := r.employees.UpdateEmployee(ctx, id, patch)
	if err != nil {
		return models.Employee{}, employeeError(err)
	}
	return updated, nil
}

// ArchiveEmployee moves the employee into the archive, recording who did it.
func (r *Registry) ArchiveEmployee(ctx context.Context, callerID, id int64, reason string) error {
	actor, err := r.users.FindByID(ctx, callerID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return apperr.Internal(err)
	}
	at := r.now()
	reason = strings.TrimSpace(reason)
	err = r.employees.ArchiveEmployee(ctx, id, func(e models.Employee) models.DeletedEmployee {
		return e.Archive(actor, reason, at)
	})
	if err != nil {
		return employeeError(err)
	}
	return nil
}

// ArchivedEmployees lists the archive to an admin.
func (r *Registry) ArchivedEmployees(ctx context.Context, callerID int64) ([]models.DeletedEmployee, error) {
	if _, err := r.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	archived, err := r.employees.ListArchivedEmployees(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return archived, nil
}

// RestoreEmployee lets an admin move an archived employee back, active.
func (r *Registry) RestoreEmployee(ctx context.Context, callerID, archiveID int64) (models.Employee, error) {
	if _, err := r.requireAdmin(ctx, callerID); err != nil {
		return models.Employee{}, err
	}
	restored, err := r.employees.RestoreEmployee(ctx, archiveID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Employee{}, apperr.NotFound("Deleted employee not found")
		}
		return models.Employee{}, employeeError(err)
	}
	return restored, nil
}

// EmployeeStats returns the dashboard aggregates.
func (r *Registry) EmployeeStats(ctx context.Context) (models.EmployeeStats, error) {
	stats, err := r.employees.EmployeeStats(ctx)
	if err != nil {
		return models.EmployeeStats{}, apperr.Internal(err)
	}
	return stats, nil
}

// Departments returns the distinct departments in use.
func (r *Registry) Departments(ctx context.Context) ([]string, error) {
	departments, err := r.employees.Departments(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return departments, nil
}

func checkHireDate(hireDate string) error {
	if _, err := time.Parse(hireDateLayout, hireDate); err != nil {
		return apperr.Validation("hire_date must be YYYY-MM-DD").With("field", "hire_date")
	}
	return nil
}

func checkSalary(salary float64) error {
	if salary < 0 {
		return apperr.Validation("salary cannot be negative").With("field", "salary")
	}
	return nil
}

func employeeError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound("Employee not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperr.Conflict("Email already exists")
	default:
		return apperr.Internal(err)
	}
}
