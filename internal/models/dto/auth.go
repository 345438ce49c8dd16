package dto

import "github.com/hongminglow/staff-be/internal/models"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  models.UserSummary `json:"user"`
	Token string             `json:"token"`
}
