package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/inkpost-be/internal/auth"
	"github.com/isdelr/inkpost-be/internal/models"
	"github.com/isdelr/inkpost-be/internal/repository"
	"github.com/rs/zerolog/log"
)

// MinUsernameLength is the shortest username accepted at registration.
const MinUsernameLength = 4

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (models.User, string, error)
}

// UserService provides registration and login.
type UserService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	now    func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, tokens *auth.TokenService) *UserService {
	return &UserService{users: users, tokens: tokens, now: time.Now}
}

// Register creates a new user, hashing their password. A taken username is
// reported by the store's UNIQUE constraint, not by a prior lookup.
func (s *UserService) Register(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if len([]rune(username)) < MinUsernameLength {
		return models.User{}, fmt.Errorf("%w: username must be at least %d characters", ErrValidation, MinUsernameLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.User{}, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
		}
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, username, password string) (models.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, "", fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, "", ErrInvalidCredentials
		}
		return models.User{}, "", err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return models.User{}, "", err
	}

	at := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, at); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
	} else {
		user.LastLogin = &at
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, token, nil
}
