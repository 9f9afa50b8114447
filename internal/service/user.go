package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"reelgram/internal/model"
	"reelgram/internal/repository"
)

// UserService handles account business logic: signup, login, profile updates.
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Signup validates the request, rejects duplicate email or username, and
// stores the account with a bcrypt password hash.
func (s *UserService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	if err := validateCredentials(req.Email, req.Password); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(req.Username)) < model.MinUsernameLength {
		return nil, model.ErrUsernameTooShort
	}

	emailTaken, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if emailTaken {
		return nil, model.ErrEmailExists
	}

	usernameTaken, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if usernameTaken {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       strings.TrimSpace(req.Username),
		Email:          req.Email,
		PasswordHashed: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password yield the same error so responses stay identical.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	if err := validateCredentials(req.Email, req.Password); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile mutates username, email, and bio. A username held by a
// different user is a conflict; keeping one's own username is not.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *model.UpdateProfileRequest) (*model.User, error) {
	if req.Email != "" && !model.IsValidEmail(req.Email) {
		return nil, model.ErrInvalidEmail
	}
	if req.Username != "" && len(strings.TrimSpace(req.Username)) < model.MinUsernameLength {
		return nil, model.ErrUsernameTooShort
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != "" && req.Username != user.Username {
		taken, err := s.repo.ExistsByUsername(ctx, req.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, model.ErrUsernameExists
		}
		user.Username = strings.TrimSpace(req.Username)
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func validateCredentials(email, password string) error {
	if !model.IsValidEmail(email) {
		return model.ErrInvalidEmail
	}
	if len(password) < model.MinPasswordLength {
		return model.ErrPasswordTooWeak
	}
	return nil
}
