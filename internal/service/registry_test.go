package service_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/staff-be/internal/apperr"
	"github.com/hongminglow/staff-be/internal/config"
	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/models/dto"
	"github.com/hongminglow/staff-be/internal/service"
	"github.com/hongminglow/staff-be/internal/storage"
)

func TestUserAdministration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin@company.com", goodPassword, models.AdminRole)
	ann := f.addUser(t, "ann@example.com", goodPassword, models.UserRole)

	_, err := f.registry.ListUsers(ctx, ann.ID)
	assert.Equal(t, "Unauthorized", appErr(t, err, apperr.KindForbidden).Message)

	users, err := f.registry.ListUsers(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = f.registry.CreateUser(ctx, admin.ID, dto.CreateUserRequest{Name: "Bob", Email: "bob@example.com", Password: "pw", Role: "root"})
	appErr(t, err, apperr.KindValidation)

	bob, err := f.registry.CreateUser(ctx, admin.ID, dto.CreateUserRequest{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, models.UserRole, bob.Role)

	_, err = f.registry.CreateUser(ctx, admin.ID, dto.CreateUserRequest{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	appErr(t, err, apperr.KindConflict)

	_, err = f.registry.CreateUser(ctx, ann.ID, dto.CreateUserRequest{Name: "Eve", Email: "eve@example.com", Password: "pw"})
	appErr(t, err, apperr.KindForbidden)

	got, err := f.registry.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got.Email)

	err = f.registry.DeleteUser(ctx, admin.ID, admin.ID)
	assert.Equal(t, "Cannot delete your own account", appErr(t, err, apperr.KindValidation).Message)

	require.NoError(t, f.registry.DeleteUser(ctx, admin.ID, bob.ID))
	appErr(t, f.registry.DeleteUser(ctx, admin.ID, bob.ID), apperr.KindNotFound)

	_, err = f.registry.GetUser(ctx, bob.ID)
	appErr(t, err, apperr.KindNotFound)
}

func TestDeleteUserWithHistoryConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin@company.com", goodPassword, models.AdminRole)
	ann := f.addUser(t, "ann@example.com", goodPassword, models.UserRole)

	_, err := f.auth.Login(ctx, ann.Email, goodPassword, source)
	require.NoError(t, err)

	appErr(t, f.registry.DeleteUser(ctx, admin.ID, ann.ID), apperr.KindConflict)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin@company.com", goodPassword, models.AdminRole)
	ann := f.addUser(t, "ann@example.com", goodPassword, models.UserRole)
	bob := f.addUser(t, "bob@example.com", goodPassword, models.UserRole)

	appErr(t, f.registry.ChangePassword(ctx, ann.ID, bob.ID, "new-pass", source), apperr.KindForbidden)
	appErr(t, f.registry.ChangePassword(ctx, ann.ID, ann.ID, "", source), apperr.KindValidation)

	require.NoError(t, f.registry.ChangePassword(ctx, ann.ID, ann.ID, "new-pass", source))
	require.NoError(t, f.registry.ChangePassword(ctx, admin.ID, bob.ID, "reset-pass", source))
	appErr(t, f.registry.ChangePassword(ctx, admin.ID, 999, "x", source), apperr.KindNotFound)

	_, err := f.auth.Login(ctx, ann.Email, "new-pass", source)
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, bob.Email, "reset-pass", source)
	require.NoError(t, err)

	logs, err := f.registry.UserPasswordLogs(ctx, ann.ID, ann.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.PasswordChanged, logs[0].Action)

	logs, err = f.registry.UserPasswordLogs(ctx, admin.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.PasswordReset, logs[0].Action)
	assert.Equal(t, admin.Name, logs[0].ChangedByName)

	_, err = f.registry.UserPasswordLogs(ctx, ann.ID, bob.ID)
	appErr(t, err, apperr.KindForbidden)

	_, err = f.registry.PasswordLogs(ctx, ann.ID)
	appErr(t, err, apperr.KindForbidden)
	all, err := f.registry.PasswordLogs(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLoginLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin@company.com", goodPassword, models.AdminRole)
	ann := f.addUser(t, "ann@example.com", goodPassword, models.UserRole)

	_, _ = f.auth.Login(ctx, ann.Email, badPassword, source)
	_, err := f.auth.Login(ctx, ann.Email, goodPassword, source)
	require.NoError(t, err)
	_, _ = f.auth.Login(ctx, "ghost@example.com", badPassword, source)

	mine, err := f.registry.UserLoginLogs(ctx, ann.ID, ann.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, models.LoginSucceeded, mine[0].Outcome)
	assert.Equal(t, models.LoginFailed, mine[1].Outcome)

	_, err = f.registry.LoginLogs(ctx, ann.ID)
	appErr(t, err, apperr.KindForbidden)

	all, err := f.registry.LoginLogs(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEmployeeLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin@company.com", goodPassword, models.AdminRole)
	ann := f.addUser(t, "ann@example.com", goodPassword, models.UserRole)

	_, err := f.registry.CreateEmployee(ctx, dto.CreateEmployeeRequest{LastName: "Smith", Email: "john@example.com"})
	assert.Equal(t, "Missing required fields", appErr(t, err, apperr.KindValidation).Message)

	_, err = f.registry.CreateEmployee(ctx, dto.CreateEmployeeRequest{FirstName: "John", Email: "john@example.com", HireDate: "15/01/2022"})
	appErr(t, err, apperr.KindValidation)

	john, err := f.registry.CreateEmployee(ctx, dto.CreateEmployeeRequest{FirstName: "John", Email: "john@example.com", Department: "IT", Salary: 75000})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", john.HireDate)
	assert.True(t, john.IsActive)

	_, err = f.registry.CreateEmployee(ctx, dto.CreateEmployeeRequest{FirstName: "Johnny", Email: "john@example.com"})
	appErr(t, err, apperr.KindConflict)

	_, err = f.registry.UpdateEmployee(ctx, john.ID, models.EmployeePatch{})
	assert.Equal(t, "No fields to update", appErr(t, err, apperr.KindValidation).Message)

	inactive := false
	updated, err := f.registry.UpdateEmployee(ctx, john.ID, models.EmployeePatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = f.registry.UpdateEmployee(ctx, 999, models.EmployeePatch{IsActive: &inactive})
	appErr(t, err, apperr.KindNotFound)

	stats, err := f.registry.EmployeeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(0), stats.Active)

	require.NoError(t, f.registry.ArchiveEmployee(ctx, ann.ID, john.ID, "contract ended"))
	appErr(t, f.registry.ArchiveEmployee(ctx, ann.ID, john.ID, ""), apperr.KindNotFound)

	_, err = f.registry.ArchivedEmployees(ctx, ann.ID)
	appErr(t, err, apperr.KindForbidden)

	archived, err := f.registry.ArchivedEmployees(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, ann.Name, archived[0].DeletedByName)
	assert.Equal(t, "contract ended", archived[0].DeletionReason)

	_, err = f.registry.RestoreEmployee(ctx, ann.ID, archived[0].ID)
	appErr(t, err, apperr.KindForbidden)

	restored, err := f.registry.RestoreEmployee(ctx, admin.ID, archived[0].ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
	assert.Equal(t, "john@example.com", restored.Email)

	_, err = f.registry.RestoreEmployee(ctx, admin.ID, archived[0].ID)
	assert.Equal(t, "Deleted employee not found", appErr(t, err, apperr.KindNotFound).Message)

	depts, err := f.registry.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"IT"}, depts)
}

func TestParseEmployeeQuery(t *testing.T) {
	q, err := service.ParseEmployeeQuery(url.Values{
		"search": {" ann "}, "isActive": {"true"}, "sortBy": {"Salary"}, "order": {"asc"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ann", q.Search)
	require.NotNil(t, q.Active)
	assert.True(t, *q.Active)
	assert.Equal(t, storage.SortSalary, q.SortBy)
	assert.Equal(t, storage.Ascending, q.Order)

	defaults, err := service.ParseEmployeeQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, storage.SortCreatedAt, defaults.SortBy)
	assert.Equal(t, storage.Descending, defaults.Order)
	assert.Nil(t, defaults.Active)

	for _, bad := range []url.Values{
		{"sortBy": {"password_hash"}},
		{"sortBy": {"salary; DROP TABLE employees"}},
		{"order": {"sideways"}},
		{"isActive": {"maybe"}},
	} {
		_, err := service.ParseEmployeeQuery(bad)
		appErr(t, err, apperr.KindValidation)
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seed := config.SeedConfig{
		AdminEmail:      "admin@company.com",
		AdminName:       "Admin User",
		AdminPassword:   "admin123",
		SampleEmployees: true,
	}

	require.NoError(t, service.Bootstrap(ctx, f.store, f.hasher, seed))
	require.NoError(t, service.Bootstrap(ctx, f.store, f.hasher, seed))

	admin, err := f.store.FindByEmail(ctx, "admin@company.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	n, err := f.store.CountEmployees(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	resp, err := f.auth.Login(ctx, "admin@company.com", "admin123", source)
	require.NoError(t, err)
	assert.Equal(t, models.AdminRole, resp.User.Role)
}
