package auth

import (
	"strings"

	"codeberg.org/algrv/authgate/accounts/users"
)

// RegisterRequest creates a password account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"omitempty,min=2,max=100"`
}

func (r *RegisterRequest) normalize() {
	r.Email = users.NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

// LoginRequest authenticates with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyRequest exchanges an identity-provider ID token for a session
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// UserResponse wraps user data
type UserResponse struct {
	User *users.User `json:"user"`
}

// VerifyResponse returned after a provider token is accepted
type VerifyResponse struct {
	Message string      `json:"message"`
	User    *users.User `json:"user"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}
