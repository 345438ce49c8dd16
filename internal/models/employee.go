package models

import "time"

// Employee is an active row of the registry.
type Employee struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Salary     float64   `json:"salary"`
	Phone      string    `json:"phone"`
	HireDate   string    `json:"hire_date"`
	Address    string    `json:"address"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EmployeePatch lists the fields an update may touch. Nil means unchanged.
type EmployeePatch struct {
	FirstName  *string  `json:"first_name"`
	LastName   *string  `json:"last_name"`
	Email      *string  `json:"email"`
	Department *string  `json:"department"`
	Position   *string  `json:"position"`
	Salary     *float64 `json:"salary"`
	Phone      *string  `json:"phone"`
	HireDate   *string  `json:"hire_date"`
	Address    *string  `json:"address"`
	IsActive   *bool    `json:"is_active"`
}

// Empty reports whether the patch carries no field at all.
func (p EmployeePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Department == nil && p.Position == nil && p.Salary == nil &&
		p.Phone == nil && p.HireDate == nil && p.Address == nil && p.IsActive == nil
}

// DeletedEmployee is an archived employee kept for restore.
type DeletedEmployee struct {
	ID             int64     `json:"id"`
	EmployeeID     int64     `json:"employee_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Department     string    `json:"department"`
	Position       string    `json:"position"`
	Salary         float64   `json:"salary"`
	Phone          string    `json:"phone"`
	HireDate       string    `json:"hire_date"`
	Address        string    `json:"address"`
	DeletedByID    *int64    `json:"deleted_by_user_id,omitempty"`
	DeletedByName  string    `json:"deleted_by_name"`
	DeletedAt      time.Time `json:"deleted_at"`
	DeletionReason string    `json:"deletion_reason,omitempty"`
}

// Archive copies the employee into its archived form.
func (e Employee) Archive(by User, reason string, at time.Time) DeletedEmployee {
	d := DeletedEmployee{
		EmployeeID:     e.ID,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Email:          e.Email,
		Department:     e.Department,
		Position:       e.Position,
		Salary:         e.Salary,
		Phone:          e.Phone,
		HireDate:       e.HireDate,
		Address:        e.Address,
		DeletedByName:  by.Name,
		DeletedAt:      at,
		DeletionReason: reason,
	}
	if by.ID != 0 {
		id := by.ID
		d.DeletedByID = &id
	}
	if d.DeletedByName == "" {
		d.DeletedByName = "Unknown"
	}
	return d
}

// Restore turns an archived row back into an active employee.
func (d DeletedEmployee) Restore() Employee {
	return Employee{
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		Department: d.Department,
		Position:   d.Position,
		Salary:     d.Salary,
		Phone:      d.Phone,
		HireDate:   d.HireDate,
		Address:    d.Address,
		IsActive:   true,
	}
}

// EmployeeStats aggregates the registry for the dashboard.
type EmployeeStats struct {
	Total         int64            `json:"total"`
	Active        int64            `json:"active"`
	AverageSalary float64          `json:"average_salary"`
	ByDepartment  map[string]int64 `json:"by_department"`
}
