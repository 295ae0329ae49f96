package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"studybuddy/internal/domain"
	"studybuddy/internal/domain/models"
	"studybuddy/internal/domain/repositories"
	"studybuddy/internal/idgen"
	"studybuddy/internal/storage"
)

const MaxFileNameLength = 255

// FileIDLength is the length of allocated file identifiers.
const FileIDLength = 12

var fileNamePattern = regexp.MustCompile(`^[^/#]+$`)

// FileService stores uploaded file bytes in object storage and records their
// metadata. It never checks authorization: callers pass a folder that already
// came out of the gate's resolver.
type FileService struct {
	files  repositories.FileRepository
	store  storage.ObjectStorage
	ids    *idgen.Allocator
	logger *slog.Logger
}

// NewFileService creates a new file service.
func NewFileService(
	files repositories.FileRepository,
	store storage.ObjectStorage,
	ids *idgen.Allocator,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		files:  files,
		store:  store,
		ids:    ids,
		logger: logger,
	}
}

// Upload streams the body into object storage under the folder's directory
// and records the file's metadata.
func (s *FileService) Upload(ctx context.Context, folder *models.Folder, ownerEmail, name, contentType string, body io.Reader) (*models.File, error) {
	if err := s.validateName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Duplicate names must be caught before the bytes go out: a conflicting
	// upload shares the existing file's storage key, and writing first would
	// overwrite it.
	existing, err := s.files.ListByFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	for _, f := range existing {
		if f.Name == name {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this folder", name),
				ResourceType: "file",
				ResourceID:   f.ID,
			}
		}
	}

	// Suffixing the owner keeps keys distinct even if two owners' folders
	// ever share a storage directory.
	key := folder.StorageDir + "/" + name + "-" + ownerEmail

	if err := s.store.Put(ctx, key, body, contentType); err != nil {
		return nil, fmt.Errorf("store file bytes: %w", err)
	}

	file, err := s.createWithFreshID(ctx, folder.ID, name, key)
	if err != nil {
		// The bytes are orphaned without their metadata row.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Error("orphaned object after failed metadata insert", "key", key, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("file uploaded", "file_id", file.ID, "name", file.Name, "folder_id", folder.ID)
	return file, nil
}

// List returns the folder's files.
func (s *FileService) List(ctx context.Context, folder *models.Folder) ([]models.File, error) {
	return s.files.ListByFolder(ctx, folder.ID)
}

func (s *FileService) createWithFreshID(ctx context.Context, folderID, name, key string) (*models.File, error) {
	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		id, err := s.ids.Allocate(ctx)
		if err != nil {
			return nil, err
		}

		file := &models.File{
			ID:         id,
			Name:       name,
			StorageKey: key,
			FolderID:   folderID,
			CreatedAt:  time.Now(),
		}

		err = s.files.Create(ctx, file)
		if err == nil {
			return file, nil
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
	return nil, fmt.Errorf("create file after %d id retries: %w", createRetries, lastErr)
}

func (s *FileService) validateName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(1, MaxFileNameLength),
		validation.Match(fileNamePattern).Error("file name cannot contain '/' or '#'"),
	)
}
