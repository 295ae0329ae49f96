package repositories

import (
	"context"

	"studybuddy/internal/domain/models"
)

// FolderRepository defines persistence operations for folders.
type FolderRepository interface {
	// Create inserts a new folder. Returns a ConflictError when the owner
	// already has a folder of the same name, and domain.ErrConflict when the
	// allocated ID lost a race against a concurrent insert (unique constraint).
	Create(ctx context.Context, folder *models.Folder) error

	// GetByNameAndOwner resolves a folder by its per-owner unique name.
	GetByNameAndOwner(ctx context.Context, name string, ownerID int64) (*models.Folder, error)

	// ExistsByID reports whether a folder with the given ID exists.
	// Consulted by the identifier allocator before handing out an ID.
	ExistsByID(ctx context.Context, id string) (bool, error)

	// ListByOwner returns all folders belonging to an owner, name-ordered.
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Folder, error)
}

// FileRepository defines persistence operations for file metadata.
type FileRepository interface {
	// Create inserts file metadata. Returns a ConflictError when the folder
	// already contains a file of the same name, and domain.ErrConflict when
	// the allocated ID lost a race against a concurrent insert.
	Create(ctx context.Context, file *models.File) error

	// ExistsByID reports whether a file with the given ID exists.
	ExistsByID(ctx context.Context, id string) (bool, error)

	// ListByFolder returns all files in a folder, name-ordered.
	ListByFolder(ctx context.Context, folderID string) ([]models.File, error)
}
