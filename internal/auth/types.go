package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// identity claims embedded in a session token
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
