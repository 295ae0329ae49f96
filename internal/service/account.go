// Package service implements the application's use cases on top of the
// repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"studybuddy/internal/auth"
	"studybuddy/internal/domain"
	"studybuddy/internal/domain/models"
	"studybuddy/internal/domain/repositories"
)

const (
	MaxUsernameLength = 64
	MaxPasswordLength = 72 // bcrypt truncates beyond 72 bytes
	MinPasswordLength = 8
)

// SignupRequest carries the fields for account registration.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest carries a login attempt. Login accepts either the email or the
// username in the same field.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AccountService handles registration and authentication.
type AccountService struct {
	users  repositories.UserRepository
	hasher auth.CredentialHasher
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	users repositories.UserRepository,
	hasher auth.CredentialHasher,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Signup registers a new identity and returns it along with a fresh identity
// token, so registration doubles as login.
func (s *AccountService) Signup(ctx context.Context, req *SignupRequest) (*models.User, string, error) {
	if err := s.validateSignup(req); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Emails are canonicalized to lower case at every entry point, so the
	// ownership comparison downstream is an exact byte match.
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     email,
		Password:  hash,
		CreatedAt: time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login verifies a credential pair and issues an identity token. Unknown
// login and wrong password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, req *LoginRequest) (*models.User, string, error) {
	if err := s.validateLogin(req); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.findByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", &domain.UnauthorizedError{Message: "invalid login or password"}
		}
		return nil, "", err
	}

	// OAuth-created accounts have no password hash; they cannot log in here.
	if user.Password == "" || !s.hasher.Compare(user.Password, req.Password) {
		return nil, "", &domain.UnauthorizedError{Message: "invalid login or password"}
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// OAuthLogin finds or creates the identity for a verified provider profile and
// issues an identity token for it.
func (s *AccountService) OAuthLogin(ctx context.Context, profile *auth.GoogleProfile) (*models.User, string, error) {
	if profile == nil || profile.Email == "" {
		return nil, "", fmt.Errorf("%w: oauth profile missing email", domain.ErrValidation)
	}

	email := strings.ToLower(profile.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		user, err = s.createOAuthUser(ctx, email, profile.Name)
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Verify checks a raw identity token and returns the user it names.
func (s *AccountService) Verify(ctx context.Context, subject string) (*models.User, error) {
	return s.users.GetByEmail(ctx, subject)
}

func (s *AccountService) createOAuthUser(ctx context.Context, email, name string) (*models.User, error) {
	username := strings.TrimSpace(name)
	if username == "" {
		username = email
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		CreatedAt: time.Now(),
	}

	err := s.users.Create(ctx, user)
	if errors.Is(err, domain.ErrConflict) && username != email {
		// Display name collided with an existing username; the email itself
		// is free (the lookup above missed), so fall back to it.
		user.Username = email
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered via oauth", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *AccountService) findByLogin(ctx context.Context, login string) (*models.User, error) {
	if strings.Contains(login, "@") {
		return s.users.GetByEmail(ctx, strings.ToLower(login))
	}
	return s.users.GetByUsername(ctx, login)
}

func (s *AccountService) validateSignup(req *SignupRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Username, validation.Required, validation.Length(1, MaxUsernameLength)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.Length(MinPasswordLength, MaxPasswordLength)),
	)
}

func (s *AccountService) validateLogin(req *LoginRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Login, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}
