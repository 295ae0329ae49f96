package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"studybuddy/internal/auth"
	"studybuddy/internal/domain"
	"studybuddy/internal/domain/models"
	"studybuddy/internal/domain/repositories"
	"studybuddy/internal/idgen"
)

const MaxFolderNameLength = 100

// FolderIDLength is the length of allocated folder identifiers.
const FolderIDLength = 10

// createRetries bounds retries when an allocated ID loses an insert race.
const createRetries = 3

// Folder names travel inside scope tokens, so the token delimiter is reserved
// alongside the usual path separator.
var folderNamePattern = regexp.MustCompile(`^[^/#]+$`)

// FolderService manages folders and mints the scope tokens that grant access
// to them.
type FolderService struct {
	folders repositories.FolderRepository
	users   repositories.UserRepository
	ids     *idgen.Allocator
	scopes  *auth.ScopeCodec
	logger  *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(
	folders repositories.FolderRepository,
	users repositories.UserRepository,
	ids *idgen.Allocator,
	scopes *auth.ScopeCodec,
	logger *slog.Logger,
) *FolderService {
	return &FolderService{
		folders: folders,
		users:   users,
		ids:     ids,
		scopes:  scopes,
		logger:  logger,
	}
}

// Create makes a new folder for the owner and returns it with a scope token
// granting access to it.
func (s *FolderService) Create(ctx context.Context, ownerEmail, name string) (*models.Folder, string, error) {
	if err := s.validateName(name); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	owner, err := s.users.GetByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, "", err
	}

	folder, err := s.createWithFreshID(ctx, owner.ID, name)
	if err != nil {
		return nil, "", err
	}

	scope, err := s.scopes.Encode(folder.Name, ownerEmail)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("folder created", "folder_id", folder.ID, "name", folder.Name, "owner_id", owner.ID)
	return folder, scope, nil
}

// Open resolves an existing folder by name for the owner and mints a fresh
// scope token for it.
func (s *FolderService) Open(ctx context.Context, ownerEmail, name string) (*models.Folder, string, error) {
	folder, err := s.Resolve(ctx, name, ownerEmail)
	if err != nil {
		return nil, "", err
	}

	scope, err := s.scopes.Encode(folder.Name, ownerEmail)
	if err != nil {
		return nil, "", err
	}

	return folder, scope, nil
}

// List returns the owner's folders.
func (s *FolderService) List(ctx context.Context, ownerEmail string) ([]models.Folder, error) {
	owner, err := s.users.GetByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	return s.folders.ListByOwner(ctx, owner.ID)
}

// Resolve looks a folder up by (name, owner email). It is the resolver the
// authorization gate runs after scope verification, so a rename or delete
// invalidates outstanding scope tokens implicitly.
func (s *FolderService) Resolve(ctx context.Context, name, ownerEmail string) (*models.Folder, error) {
	owner, err := s.users.GetByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	return s.folders.GetByNameAndOwner(ctx, name, owner.ID)
}

// createWithFreshID allocates an ID and inserts, retrying with a new ID when
// the insert loses a uniqueness race. A ConflictError (duplicate name) is
// terminal and returned as-is.
func (s *FolderService) createWithFreshID(ctx context.Context, ownerID int64, name string) (*models.Folder, error) {
	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		id, err := s.ids.Allocate(ctx)
		if err != nil {
			return nil, err
		}

		folder := &models.Folder{
			ID:         id,
			Name:       name,
			OwnerID:    ownerID,
			StorageDir: id,
			CreatedAt:  time.Now(),
		}

		err = s.folders.Create(ctx, folder)
		if err == nil {
			return folder, nil
		}

		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return nil, err
		}
		if errors.Is(err, domain.ErrConflict) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("create folder after %d id retries: %w", createRetries, lastErr)
}

func (s *FolderService) validateName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(1, MaxFolderNameLength),
		validation.Match(folderNamePattern).Error("folder name cannot contain '/' or '#'"),
	)
}
