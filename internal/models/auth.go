package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries a bearer token and the identity it was issued to.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        UserInfo  `json:"user"`
}

type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// JWTClaims is the access token payload. The console reads role and exp
// without verifying the signature, so both must stay top-level.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// DisplayName is recorded as the reviewer of a suggestion.
func (c *JWTClaims) DisplayName() string {
	switch {
	case c == nil:
		return ""
	case c.FullName != "":
		return c.FullName
	default:
		return c.Email
	}
}
