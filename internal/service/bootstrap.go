package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hongminglow/staff-be/internal/auth"
	"github.com/hongminglow/staff-be/internal/config"
	"github.com/hongminglow/staff-be/internal/models"
	"github.com/hongminglow/staff-be/internal/storage"
)

var sampleEmployees = []models.Employee{
	{FirstName: "John", LastName: "Smith", Email: "john.smith@company.com", Department: "IT", Position: "Developer",
		Salary: 75000, Phone: "555-0101", HireDate: "2022-01-15", Address: "123 Main St", IsActive: true},
	{FirstName: "Sarah", LastName: "Johnson", Email: "sarah.j@company.com", Department: "HR", Position: "Manager",
		Salary: 85000, Phone: "555-0102", HireDate: "2021-06-20", Address: "456 Oak Ave", IsActive: true},
	{FirstName: "Mike", LastName: "Brown", Email: "mike.brown@company.com", Department: "Sales", Position: "Executive",
		Salary: 80000, Phone: "555-0103", HireDate: "2022-03-10", Address: "789 Pine Rd", IsActive: true},
}

// Bootstrap seeds the admin account and, when asked, sample employees into
// an empty registry. It is safe to run on every start.
func Bootstrap(ctx context.Context, store storage.Store, hasher auth.PasswordHasher, seed config.SeedConfig) error {
	if seed.AdminPassword != "" {
		if err := seedAdmin(ctx, store, hasher, seed); err != nil {
			return err
		}
	}
	if !seed.SampleEmployees {
		return nil
	}
	n, err := store.CountEmployees(ctx)
	if err != nil {
		return fmt.Errorf("count employees: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, e := range sampleEmployees {
		if _, err := store.CreateEmployee(ctx, e); err != nil {
			return fmt.Errorf("seed employee %s: %w", e.Email, err)
		}
	}
	log.Printf("bootstrap: %d sample employees created", len(sampleEmployees))
	return nil
}

func seedAdmin(ctx context.Context, store storage.UserStore, hasher auth.PasswordHasher, seed config.SeedConfig) error {
	_, err := store.FindByEmail(ctx, seed.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}
	digest, err := hasher.Hash(seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = store.CreateUser(ctx, models.User{
		Name:         seed.AdminName,
		Email:        seed.AdminEmail,
		Role:         models.AdminRole,
		PasswordHash: digest,
	})
	if err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("bootstrap: admin user %s created", seed.AdminEmail)
	return nil
}
