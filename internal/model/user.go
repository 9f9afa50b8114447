package model

import (
	"errors"
	"regexp"
	"time"
)

// User represents a registered account.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	Bio            *string   `db:"bio" json:"bio,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SignupRequest represents the data needed to create an account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest represents the data needed to log in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the request body for PUT /api/auth/profile.
type UpdateProfileRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Bio      *string `json:"bio"`
}

// AuthResponse is returned by signup, login, and profile updates.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Account constraints
const (
	MinPasswordLength = 6
	MinUsernameLength = 3
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether the address has the expected shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when the email is already registered
	ErrEmailExists = errors.New("email already registered")

	// ErrUsernameExists is returned when the username is already taken
	ErrUsernameExists = errors.New("username already taken")

	// ErrInvalidCredentials is returned on unknown email or wrong password.
	// One shared error keeps the responses identical, so they cannot be used
	// for account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooWeak  = errors.New("password must be at least 6 characters long")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
)
