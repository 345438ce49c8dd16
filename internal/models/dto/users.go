package dto

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
