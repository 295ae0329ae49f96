package repositories

import (
	"context"

	"studybuddy/internal/domain/models"
)

// UserRepository defines persistence operations for identities.
// Lookups return domain.ErrNotFound when no identity matches.
type UserRepository interface {
	// Create inserts a new user. Returns a ConflictError if the email or
	// username is already taken.
	Create(ctx context.Context, user *models.User) error

	// GetByEmail retrieves a user by canonical (lower-cased) email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
