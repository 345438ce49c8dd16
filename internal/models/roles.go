package models

const (
	AdminRole = "admin"
	UserRole  = "user"
)

// ValidRole reports whether role is one the registry accepts.
func ValidRole(role string) bool {
	return role == AdminRole || role == UserRole
}
