package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/planetaagua/storefront/internal/events"
	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
	"github.com/planetaagua/storefront/internal/transport"
	"github.com/planetaagua/storefront/pkg/hash"
	"github.com/planetaagua/storefront/pkg/tokens"
)

type AuthService struct {
	Users     repo.Repository[models.User]
	JWTSecret []byte
	Events    events.Publisher
	Now       func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) Signup(ctx context.Context, req transport.SignupRequest) (*models.User, error) {
	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hashed,
		Phone:        req.Phone,
	}
	if err := s.Users.Insert(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, fmt.Errorf("%w: email %s", ErrConflict, user.Email)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), events.UserRegistered, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, nil
}

// Login answers ErrInvalidCredentials for both an unknown email and a wrong
// password.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (string, *models.User, error) {
	user, err := s.Users.FindOne(ctx, repo.Filter{"email": strings.TrimSpace(req.Email)})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := tokens.SignAccessToken(user.ID, user.Email, s.JWTSecret, s.now())
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Users.FindOne(ctx, repo.Filter{"id": userID})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	return user, nil
}
