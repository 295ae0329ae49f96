package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"studybuddy/internal/domain"
	"studybuddy/internal/domain/models"
	"studybuddy/internal/domain/repositories"
)

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts file metadata
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	existingID, err := r.findIDByNameAndFolder(ctx, file.Name, file.FolderID)
	if err != nil {
		return err
	}
	if existingID != "" {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a file named %q already exists in this folder", file.Name),
			ResourceType: "file",
			ResourceID:   existingID,
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, storage_key, folder_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Files)

	_, err = r.pool.Exec(ctx, query,
		file.ID,
		file.Name,
		file.StorageKey,
		file.FolderID,
		file.CreatedAt,
	)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("file %q: %w", file.Name, domain.ErrConflict)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", file.FolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// ExistsByID reports whether a file with the given ID exists
func (r *PostgresFileRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, r.tables.Files)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check file id: %w", err)
	}
	return exists, nil
}

// ListByFolder returns all files in a folder
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, name, storage_key, folder_id, created_at
		FROM %s
		WHERE folder_id = $1
		ORDER BY name ASC
	`, r.tables.Files)

	rows, err := r.pool.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.Name,
			&file.StorageKey,
			&file.FolderID,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

func (r *PostgresFileRepository) findIDByNameAndFolder(ctx context.Context, name, folderID string) (string, error) {
	query := fmt.Sprintf(`
		SELECT id FROM %s WHERE name = $1 AND folder_id = $2
	`, r.tables.Files)

	var id string
	err := r.pool.QueryRow(ctx, query, name, folderID).Scan(&id)
	if err != nil {
		if IsPgNoRowsError(err) {
			return "", nil
		}
		return "", fmt.Errorf("check duplicate file name: %w", err)
	}
	return id, nil
}
