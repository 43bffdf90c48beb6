// Package auth registers users and issues the bearer tokens that protect the
// track routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/faizan/spotify-tracks/apperr"
	"github.com/faizan/spotify-tracks/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordCost = 10
	// bcrypt ignores input past 72 bytes
	maxPasswordLen = 72
)

// UserStore is the persistence the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type Service struct {
	users  UserStore
	tokens *Tokens
}

func NewService(users UserStore, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register hashes password and stores a new user.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", apperr.ErrValidation)
	}
	if len(password) > maxPasswordLen {
		return nil, fmt.Errorf("%w: password longer than %d bytes", apperr.ErrValidation, maxPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %v", apperr.ErrServer, err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrServer, err)
	}
	return user, nil
}

// Login checks the credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, apperr.ErrNotFound) {
		return "", fmt.Errorf("%w: invalid credentials", apperr.ErrAuth)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrServer, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", apperr.ErrAuth)
	}

	return s.tokens.Issue(user.Username)
}

// Verify validates a bearer token and returns its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}
