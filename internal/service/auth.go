package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foliocms/folio/internal/auth"
	"github.com/foliocms/folio/internal/model"
	"github.com/foliocms/folio/internal/repository"
)

// AuthService registers accounts and signs users in.
type AuthService struct {
	users  UserStore
	hasher *auth.Hasher
	tokens *auth.TokenIssuer
	logger *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher *auth.Hasher, tokens *auth.TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register stores a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	switch {
	case name == "":
		return nil, missing("name")
	case email == "":
		return nil, missing("email")
	case password == "":
		return nil, missing("password")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user_registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrEmailNotFound
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return "", nil, ErrBadPassword
		}
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.Name, user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Verify returns the claims carried by token, if it is valid.
func (s *AuthService) Verify(token string) (*auth.Claims, bool) {
	return s.tokens.Verify(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
