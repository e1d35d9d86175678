// Package transport defines request DTOs for auth HTTP endpoints.
package transport

// LoginRequest carries the admin login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}
