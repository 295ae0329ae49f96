package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"studybuddy/internal/domain"
	"studybuddy/internal/domain/models"
	"studybuddy/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a new folder. Name uniqueness per owner and ID uniqueness
// are both enforced by constraints; the app-level duplicate check only gives
// a friendlier error for the common case.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	existing, err := r.GetByNameAndOwner(ctx, folder.Name, folder.OwnerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if existing != nil {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists", folder.Name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, owner_id, storage_dir, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Folders)

	_, err = r.pool.Exec(ctx, query,
		folder.ID,
		folder.Name,
		folder.OwnerID,
		folder.StorageDir,
		folder.CreatedAt,
	)

	if err != nil {
		if IsPgDuplicateError(err) {
			// Either the ID or the (name, owner) pair lost a race.
			return fmt.Errorf("folder %q: %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByNameAndOwner resolves a folder by its per-owner unique name
func (r *PostgresFolderRepository) GetByNameAndOwner(ctx context.Context, name string, ownerID int64) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, owner_id, storage_dir, created_at
		FROM %s
		WHERE name = $1 AND owner_id = $2
	`, r.tables.Folders)

	var folder models.Folder
	err := r.pool.QueryRow(ctx, query, name, ownerID).Scan(
		&folder.ID,
		&folder.Name,
		&folder.OwnerID,
		&folder.StorageDir,
		&folder.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// ExistsByID reports whether a folder with the given ID exists
func (r *PostgresFolderRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, r.tables.Folders)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check folder id: %w", err)
	}
	return exists, nil
}

// ListByOwner returns all folders belonging to an owner
func (r *PostgresFolderRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, owner_id, storage_dir, created_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY name ASC
	`, r.tables.Folders)

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.OwnerID,
			&folder.StorageDir,
			&folder.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}
