// Package dto contains Data Transfer Objects for API request and response structures
package dto

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
	Password string `json:"password" validate:"required,max=100" example:"SecurePass123!"`
}

// RegisterData represents the payload returned after successful registration
type RegisterData struct {
	UserID uint    `json:"user_id" example:"123"`
	User   UserDTO `json:"user"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
	Password string `json:"password" validate:"required,max=100" example:"SecurePass123!"`
}

// LoginData represents the payload returned after successful login
type LoginData struct {
	AccessToken string  `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string  `json:"token_type" example:"Bearer"`
	ExpiresIn   int     `json:"expires_in" example:"86400"`
	User        UserDTO `json:"user"`
}

// UserDTO represents user information returned in auth responses
type UserDTO struct {
	ID        uint   `json:"id" example:"123"`
	Email     string `json:"email" example:"user@example.com"`
	IsActive  bool   `json:"is_active" example:"true"`
	CreatedAt string `json:"created_at" example:"2026-01-15T10:30:00Z"`
}

// Common error codes for auth operations
const (
	ErrorInvalidCredentials = "INVALID_CREDENTIALS"
	ErrorEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	ErrorAccountInactive    = "ACCOUNT_INACTIVE"
)
