// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, authorizes, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services receive repository INTERFACES, not concrete stores, and return
// domain errors from internal/apperror, never HTTP status codes. The handler
// layer translates both directions. Every chat-scoped operation consults the
// access.Authorizer before touching state, so a denial can never leave a
// partial write behind.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/anonymous123-code/chatApp/internal/apperror"
	"github.com/anonymous123-code/chatApp/internal/auth"
	"github.com/anonymous123-code/chatApp/internal/model"
	"github.com/anonymous123-code/chatApp/internal/repository"
)

// Validation constants.
const (
	MaxUsernameLength = 30
	MaxFullNameLength = 100
)

// emailPattern is deliberately loose: something, an @, something, a dot,
// something. Real validation happens when mail bounces; this only catches
// obvious typos.
var emailPattern = regexp.MustCompile(`[^@]+@[^@]+\.[^@]+`)

// AuthService handles registration, credential checks, and profile reads.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user with the issued JWT so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new user account.
//
// Rules, all checked before any write:
//   - username required, at most MaxUsernameLength chars, unique
//   - password required (bcrypt caps it at 72 bytes, enforced by Hash)
//   - email must match emailPattern → "email is invalid"
//
// A duplicate username surfaces as a validation failure ("username already
// registered"), not a conflict: to the registering client it's a bad
// request, and leaking registration timing adds nothing.
func (s *AuthService) Register(ctx context.Context, username, password, fullName, email string) (*model.User, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if len(fullName) > MaxFullNameLength {
		return nil, apperror.ValidationFailed("full_name",
			fmt.Sprintf("full name must be %d characters or less", MaxFullNameLength))
	}
	if !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "email is invalid")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("username", "username already registered")
		}
		return nil, fmt.Errorf("service/auth: creating user %s: %w", username, err)
	}

	s.logger.Info("user registered", slog.String("username", user.Username))

	return user, nil
}

// Authenticate checks the credentials and issues an access token.
//
// Wrong username and wrong password yield the same Unauthorized message, so
// a caller can't probe which usernames exist. Disabled accounts are rejected
// even with correct credentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("incorrect username or password")
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("incorrect username or password")
	}

	if user.Disabled {
		return nil, apperror.Unauthorized("user is disabled")
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for %s: %w", username, err)
	}

	s.logger.Info("user authenticated", slog.String("username", user.Username))

	return &AuthResult{User: user, Token: token}, nil
}

// GetUser returns the profile for username and whether the requester may see
// the full record. Anyone authenticated may look anyone up; only the profile
// owner gets email, full name, and the disabled flag — everyone else gets
// the public subset (the handler serializes accordingly).
func (s *AuthService) GetUser(ctx context.Context, username, requester string) (user *model.User, full bool, err error) {
	user, err = s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, false, apperror.NotFoundMsg("user not found")
		}
		return nil, false, fmt.Errorf("service/auth: fetching user %s: %w", username, err)
	}

	return user, username == requester, nil
}
