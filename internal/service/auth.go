package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"reelgram/internal/config"
	"reelgram/internal/model"
)

// AuthService issues and verifies signed credentials. Sessions live only as
// claims inside the token; logout works through an in-memory revocation set
// keyed by token id, swept as entries expire.
type AuthService struct {
	config *config.Config

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		config:  cfg,
		revoked: make(map[string]time.Time),
	}
}

// IssueToken signs a credential embedding the user's identity claims with a
// 24-hour expiry (configurable).
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the credential's signature and expiry and yields the
// embedded identity claims.
func (s *AuthService) Verify(tokenString string) (*model.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, model.ErrTokenInvalid
	}

	userID, ok := claims["id"].(float64)
	if !ok {
		return nil, model.ErrTokenInvalid
	}
	email, _ := claims["email"].(string)
	username, _ := claims["username"].(string)
	tokenID, _ := claims["jti"].(string)

	session := &model.Session{
		TokenID:  tokenID,
		UserID:   int64(userID),
		Email:    email,
		Username: username,
	}
	if iat, ok := claims["iat"].(float64); ok {
		session.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		session.Expiry = time.Unix(int64(exp), 0)
	}

	if s.isRevoked(session.TokenID) {
		return nil, model.ErrTokenRevoked
	}

	return session, nil
}

// Revoke destroys the session: its token id is refused until the token would
// have expired anyway.
func (s *AuthService) Revoke(session *model.Session) {
	if session.TokenID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(time.Now())
	expiry := session.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second)
	}
	s.revoked[session.TokenID] = expiry
}

func (s *AuthService) isRevoked(tokenID string) bool {
	if tokenID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(time.Now())
	_, revoked := s.revoked[tokenID]
	return revoked
}

// sweepLocked drops revocation entries whose tokens have expired on their
// own. Caller holds s.mu.
func (s *AuthService) sweepLocked(now time.Time) {
	for jti, expiry := range s.revoked {
		if now.After(expiry) {
			delete(s.revoked, jti)
		}
	}
}
