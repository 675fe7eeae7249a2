package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/middleware"
	"github.com/lexflowhq/lexflow-api/internal/port"
	"github.com/lexflowhq/lexflow-api/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence contract for login.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuthService handles email+password login for invited accounts.
type AuthService struct {
	users  UserStore
	jwtCfg middleware.JWTConfig
}

// NewAuthService creates a new authentication service.
func NewAuthService(users UserStore, cfg *config.Config) *AuthService {
	return &AuthService{
		users: users,
		jwtCfg: middleware.JWTConfig{
			Secret:    cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
			ExpiresIn: time.Duration(cfg.JWTExpiration) * time.Hour,
		},
	}
}

// Login verifies credentials and returns a signed JWT plus the user.
// Unknown emails and wrong passwords both map to ErrUnauthorized so the
// response does not reveal which one was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, port.ErrNotFound) {
		return "", nil, port.ErrUnauthorized
	}
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, port.ErrUnauthorized
	}

	jwt, err := middleware.GenerateJWT(user, s.jwtCfg)
	if err != nil {
		return "", nil, fmt.Errorf("generate jwt: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return jwt, user, nil
}
