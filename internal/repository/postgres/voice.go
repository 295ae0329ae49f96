package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"studybuddy/internal/domain"
	"studybuddy/internal/domain/models"
	"studybuddy/internal/domain/repositories"
)

// PostgresVoiceRepository implements the VoiceCharacterRepository interface
type PostgresVoiceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewVoiceRepository creates a new voice character repository
func NewVoiceRepository(config *RepositoryConfig) repositories.VoiceCharacterRepository {
	return &PostgresVoiceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a catalog entry
func (r *PostgresVoiceRepository) Create(ctx context.Context, voice *models.VoiceCharacter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, eleven_labs_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Voices)

	err := r.pool.QueryRow(ctx, query,
		voice.Name,
		voice.ElevenLabsID,
		voice.CreatedAt,
	).Scan(&voice.ID, &voice.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "voice already exists",
				ResourceType: "voice",
				ResourceID:   voice.ElevenLabsID,
			}
		}
		return fmt.Errorf("create voice: %w", err)
	}

	return nil
}

// GetByElevenLabsID retrieves a voice by its provider identifier
func (r *PostgresVoiceRepository) GetByElevenLabsID(ctx context.Context, elevenLabsID string) (*models.VoiceCharacter, error) {
	query := fmt.Sprintf(`
		SELECT id, name, eleven_labs_id, created_at
		FROM %s
		WHERE eleven_labs_id = $1
	`, r.tables.Voices)

	var voice models.VoiceCharacter
	err := r.pool.QueryRow(ctx, query, elevenLabsID).Scan(
		&voice.ID,
		&voice.Name,
		&voice.ElevenLabsID,
		&voice.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("voice %s: %w", elevenLabsID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get voice: %w", err)
	}

	return &voice, nil
}

// List returns all stored voices
func (r *PostgresVoiceRepository) List(ctx context.Context) ([]models.VoiceCharacter, error) {
	query := fmt.Sprintf(`
		SELECT id, name, eleven_labs_id, created_at
		FROM %s
		ORDER BY name ASC
	`, r.tables.Voices)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	defer rows.Close()

	var voices []models.VoiceCharacter
	for rows.Next() {
		var voice models.VoiceCharacter
		err := rows.Scan(
			&voice.ID,
			&voice.Name,
			&voice.ElevenLabsID,
			&voice.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan voice: %w", err)
		}
		voices = append(voices, voice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voices: %w", err)
	}

	return voices, nil
}
