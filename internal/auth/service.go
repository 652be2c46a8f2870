// Package auth handles email/password authentication and JWT issuance.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/photoflow/service/internal/config"
	"github.com/photoflow/service/internal/user"
)

// Service contains the business logic for email/password authentication.
type Service struct {
	userSvc *user.Service
	cfg     *config.Config
}

// NewService creates a new auth Service.
func NewService(userSvc *user.Service, cfg *config.Config) *Service {
	return &Service{userSvc: userSvc, cfg: cfg}
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.userSvc.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a signed JWT for the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.userSvc.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(u.ID, u.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// issueToken creates a signed JWT for the given user.
func (s *Service) issueToken(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
