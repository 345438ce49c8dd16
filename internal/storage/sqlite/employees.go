package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/storage"
)

const employeeColumns = `id, first_name, last_name, email, department, position, salary, phone, hire_date, address, is_active, created_at, updated_at`

const archiveColumns = `id, employee_id, first_name, last_name, email, department, position, salary, phone, hire_date, address,
	deleted_by_user_id, deleted_by_name, deleted_at, deletion_reason`

// ListEmployees filters and sorts employees using allow-listed columns only.
// LIKE is case-insensitive for ASCII in SQLite.
func (s *Store) ListEmployees(ctx context.Context, q storage.EmployeeQuery) ([]models.Employee, error) {
	var (
		where []string
		args  []any
	)
	if q.Search != "" {
		pattern := q.SearchPattern()
		args = append(args, pattern, pattern, pattern)
		where = append(where, `(first_name LIKE ? ESCAPE '\' OR last_name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')`)
	}
	if q.Department != "" {
		args = append(args, q.Department)
		where = append(where, "department = ?")
	}
	if q.Active != nil {
		args = append(args, *q.Active)
		where = append(where, "is_active = ?")
	}

	query := `SELECT ` + employeeColumns + ` FROM employees`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ` + q.OrderBy()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// GetEmployee fetches one employee.
func (s *Store) GetEmployee(ctx context.Context, id int64) (models.Employee, error) {
	return getEmployee(ctx, s.db, id)
}

// CreateEmployee inserts an employee and returns the stored row.
func (s *Store) CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error) {
	return s.insertEmployee(ctx, s.db, e)
}

// UpdateEmployee applies the non-nil fields of patch.
func (s *Store) UpdateEmployee(ctx context.Context, id int64, patch models.EmployeePatch) (models.Employee, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = ?")
	}
	if patch.FirstName != nil {
		add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		add("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Department != nil {
		add("department", *patch.Department)
	}
	if patch.Position != nil {
		add("position", *patch.Position)
	}
	if patch.Salary != nil {
		add("salary", *patch.Salary)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.HireDate != nil {
		add("hire_date", *patch.HireDate)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if len(sets) == 0 {
		return s.GetEmployee(ctx, id)
	}
	add("updated_at", toMillis(s.now()))
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE employees SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return models.Employee{}, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Employee{}, fmt.Errorf("update employee: %w", err)
	}
	if n == 0 {
		return models.Employee{}, storage.ErrNotFound
	}
	return s.GetEmployee(ctx, id)
}

// ArchiveEmployee copies the employee into deleted_employees and removes it, atomically.
func (s *Store) ArchiveEmployee(ctx context.Context, id int64, build func(models.Employee) models.DeletedEmployee) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		e, err := getEmployee(ctx, tx, id)
		if err != nil {
			return err
		}
		d := build(e)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO deleted_employees (employee_id, first_name, last_name, email, department, position,
				salary, phone, hire_date, address, deleted_by_user_id, deleted_by_name, deleted_at, deletion_reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.EmployeeID, d.FirstName, d.LastName, d.Email, d.Department, d.Position,
			d.Salary, d.Phone, d.HireDate, d.Address, nullID(d.DeletedByID), d.DeletedByName,
			toMillis(d.DeletedAt), d.DeletionReason); err != nil {
			return fmt.Errorf("archive employee: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete employee: %w", err)
		}
		return nil
	})
}

// ListArchivedEmployees returns archived employees, most recent deletion first.
func (s *Store) ListArchivedEmployees(ctx context.Context) ([]models.DeletedEmployee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+archiveColumns+` FROM deleted_employees ORDER BY deleted_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list archived employees: %w", err)
	}
	defer rows.Close()

	archived := []models.DeletedEmployee{}
	for rows.Next() {
		d, err := scanArchived(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archived employee: %w", err)
		}
		archived = append(archived, d)
	}
	return archived, rows.Err()
}

// RestoreEmployee moves an archived row back into employees, atomically.
func (s *Store) RestoreEmployee(ctx context.Context, archiveID int64) (models.Employee, error) {
	var restored models.Employee
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		d, err := scanArchived(tx.QueryRowContext(ctx,
			`SELECT `+archiveColumns+` FROM deleted_employees WHERE id = ?`, archiveID))
		if err != nil {
			return translate(err)
		}
		restored, err = s.insertEmployee(ctx, tx, d.Restore())
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM deleted_employees WHERE id = ?`, archiveID); err != nil {
			return fmt.Errorf("delete archived employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Employee{}, err
	}
	return restored, nil
}

// EmployeeStats aggregates totals, the active count, average salary and departments.
func (s *Store) EmployeeStats(ctx context.Context) (models.EmployeeStats, error) {
	stats := models.EmployeeStats{ByDepartment: map[string]int64{}}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0), COALESCE(AVG(salary), 0.0)
		FROM employees`).Scan(&stats.Total, &stats.Active, &stats.AverageSalary)
	if err != nil {
		return models.EmployeeStats{}, fmt.Errorf("employee totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT department, COUNT(*) FROM employees GROUP BY department`)
	if err != nil {
		return models.EmployeeStats{}, fmt.Errorf("employees by department: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			dept  string
			count int64
		)
		if err := rows.Scan(&dept, &count); err != nil {
			return models.EmployeeStats{}, fmt.Errorf("scan department count: %w", err)
		}
		stats.ByDepartment[dept] = count
	}
	return stats, rows.Err()
}

// Departments lists the distinct non-empty departments.
func (s *Store) Departments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT department FROM employees WHERE department <> '' ORDER BY department`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	departments := []string{}
	for rows.Next() {
		var dept string
		if err := rows.Scan(&dept); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, dept)
	}
	return departments, rows.Err()
}

// CountEmployees returns the number of active-table rows.
func (s *Store) CountEmployees(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return n, nil
}

func getEmployee(ctx context.Context, q querier, id int64) (models.Employee, error) {
	e, err := scanEmployee(q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id))
	if err != nil {
		return models.Employee{}, translate(err)
	}
	return e, nil
}

func (s *Store) insertEmployee(ctx context.Context, q querier, e models.Employee) (models.Employee, error) {
	now := toMillis(s.now())
	res, err := q.ExecContext(ctx, `
		INSERT INTO employees (first_name, last_name, email, department, position, salary, phone, hire_date, address,
			is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.FirstName, e.LastName, e.Email, e.Department, e.Position, e.Salary, e.Phone, e.HireDate, e.Address,
		e.IsActive, now, now)
	if err != nil {
		return models.Employee{}, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Employee{}, fmt.Errorf("employee id: %w", err)
	}
	return getEmployee(ctx, q, id)
}

func scanEmployee(row scanner) (models.Employee, error) {
	var (
		e                models.Employee
		created, updated int64
	)
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Department, &e.Position, &e.Salary,
		&e.Phone, &e.HireDate, &e.Address, &e.IsActive, &created, &updated); err != nil {
		return models.Employee{}, err
	}
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	return e, nil
}

func scanArchived(row scanner) (models.DeletedEmployee, error) {
	var (
		d         models.DeletedEmployee
		deletedBy sql.NullInt64
		deletedAt int64
	)
	if err := row.Scan(&d.ID, &d.EmployeeID, &d.FirstName, &d.LastName, &d.Email, &d.Department, &d.Position,
		&d.Salary, &d.Phone, &d.HireDate, &d.Address, &deletedBy, &d.DeletedByName, &deletedAt, &d.DeletionReason); err != nil {
		return models.DeletedEmployee{}, err
	}
	d.DeletedByID = idFromNull(deletedBy)
	d.DeletedAt = fromMillis(deletedAt)
	return d, nil
}
