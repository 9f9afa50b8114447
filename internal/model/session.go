package model

import (
	"errors"
	"time"
)

// Session is the identity carried by a verified credential.
type Session struct {
	TokenID  string    `json:"-"` // jti, used for revocation at logout
	UserID   int64     `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	IssuedAt time.Time `json:"-"`
	Expiry   time.Time `json:"-"`
}

// Credential errors
var (
	ErrTokenInvalid = errors.New("invalid authentication token")
	ErrTokenExpired = errors.New("authentication token has expired")
	ErrTokenRevoked = errors.New("authentication token has been revoked")
)

// Error codes for auth HTTP responses
const (
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenRevoked = "TOKEN_REVOKED"
)
