package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/staff-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInUse indicates the record is still referenced, e.g. by audit rows.
var ErrInUse = errors.New("record is still referenced")

// UserStore captures persistence operations on credential records.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	// ChangePassword swaps the digest and appends entry to the password log atomically.
	ChangePassword(ctx context.Context, entry models.PasswordLog) error
	ListPasswordLogs(ctx context.Context, userID int64, limit int) ([]models.PasswordLog, error)
}

// LoginTx is the unit of work of one login attempt for one email. All reads
// and writes go through the transaction that serializes attempts for it.
type LoginTx interface {
	// Attempt returns the ledger row for the email and whether it exists.
	Attempt(ctx context.Context) (models.AttemptRecord, bool, error)
	// User returns the credential record for the email or ErrNotFound.
	User(ctx context.Context) (models.User, error)
	// SaveAttempt inserts or updates the ledger row for the email.
	SaveAttempt(ctx context.Context, rec models.AttemptRecord) error
	// AppendEvent adds a row to the login history.
	AppendEvent(ctx context.Context, event models.LoginEvent) error
}

// AttemptStore owns the attempt ledger and login history.
type AttemptStore interface {
	// WithinLogin runs fn in a transaction that excludes concurrent logins for
	// the same email. The transaction commits when fn returns nil.
	WithinLogin(ctx context.Context, email string, fn func(tx LoginTx) error) error
	FindAttempt(ctx context.Context, email string) (models.AttemptRecord, error)
	ListLoginEvents(ctx context.Context, filter LoginEventFilter) ([]models.LoginEvent, error)
}

// LoginEventFilter narrows the login history; a zero UserID lists everyone.
type LoginEventFilter struct {
	UserID int64
	Limit  int
}

// EmployeeStore covers the employee registry and its archive.
type EmployeeStore interface {
	ListEmployees(ctx context.Context, q EmployeeQuery) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id int64) (models.Employee, error)
	CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error)
	UpdateEmployee(ctx context.Context, id int64, patch models.EmployeePatch) (models.Employee, error)
	// ArchiveEmployee moves the employee into the archive in one transaction.
	ArchiveEmployee(ctx context.Context, id int64, build func(models.Employee) models.DeletedEmployee) error
	ListArchivedEmployees(ctx context.Context) ([]models.DeletedEmployee, error)
	// RestoreEmployee moves an archived row back in one transaction.
	RestoreEmployee(ctx context.Context, archiveID int64) (models.Employee, error)
	EmployeeStats(ctx context.Context) (models.EmployeeStats, error)
	Departments(ctx context.Context) ([]string, error)
	CountEmployees(ctx context.Context) (int64, error)
}

// Store is everything the server needs from a backend.
type Store interface {
	UserStore
	AttemptStore
	EmployeeStore
	Close()
}
