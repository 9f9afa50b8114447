package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"reelgram/internal/httputil"
	"reelgram/internal/model"
	"reelgram/internal/service"
	"reelgram/internal/transport/http/middleware"
)

// AuthHandler handles signup, login, profile and logout requests.
type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewAuthHandler(userService *service.UserService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
	}
}

// Signup registers a new account and returns a fresh token with the
// created user.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, "Invalid request body")
		return
	}

	user, err := h.userService.Signup(r.Context(), &req)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		log.Printf("[AuthHandler] Failed to issue token for user %d: %v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to create session")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.AuthResponse{Token: token, User: user})
}

// Login authenticates an existing account. Unknown email and wrong
// password produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, "Invalid request body")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		h.writeAuthError(w, err)
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		log.Printf("[AuthHandler] Failed to issue token for user %d: %v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to create session")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.AuthResponse{Token: token, User: user})
}

// UpdateProfile modifies the authenticated user's profile. The response
// carries a re-issued token so clients holding claims that embed the
// username stay consistent.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Missing authentication token")
		return
	}

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), session.UserID, &req)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		log.Printf("[AuthHandler] Failed to re-issue token for user %d: %v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to refresh session")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.AuthResponse{Token: token, User: user})
}

// Logout revokes the presented token for the remainder of its lifetime.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Missing authentication token")
		return
	}

	h.authService.Revoke(session)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidEmail):
		httputil.WriteValidationError(w, "Invalid email address")
	case errors.Is(err, model.ErrPasswordTooWeak):
		httputil.WriteValidationError(w, "Password must be at least 6 characters")
	case errors.Is(err, model.ErrUsernameTooShort):
		httputil.WriteValidationError(w, "Username must be at least 3 characters")
	case errors.Is(err, model.ErrEmailExists):
		httputil.WriteConflict(w, "An account with this email already exists")
	case errors.Is(err, model.ErrUsernameExists):
		httputil.WriteConflict(w, "This username is already taken")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	default:
		log.Printf("[AuthHandler] Unexpected error: %v", err)
		httputil.WriteInternalError(w, "Something went wrong")
	}
}
