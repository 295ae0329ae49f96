package repositories

import (
	"context"

	"studybuddy/internal/domain/models"
)

// VoiceCharacterRepository defines persistence operations for the voice catalog.
type VoiceCharacterRepository interface {
	// Create inserts a catalog entry. Returns a ConflictError if a voice with
	// the same ElevenLabs ID already exists.
	Create(ctx context.Context, voice *models.VoiceCharacter) error

	// GetByElevenLabsID retrieves a voice by its provider identifier.
	GetByElevenLabsID(ctx context.Context, elevenLabsID string) (*models.VoiceCharacter, error)

	// List returns all stored voices, name-ordered.
	List(ctx context.Context) ([]models.VoiceCharacter, error)
}
