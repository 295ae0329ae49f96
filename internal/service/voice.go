package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"studybuddy/internal/catalog"
	"studybuddy/internal/domain"
	"studybuddy/internal/domain/models"
	"studybuddy/internal/domain/repositories"
)

// VoiceInput is one voice to register.
type VoiceInput struct {
	Name         string `json:"name"`
	ElevenLabsID string `json:"eleven_labs_id"`
}

// VoiceService manages the text-to-speech voice catalog: the embedded seed
// voices plus whatever has been registered at runtime.
type VoiceService struct {
	voices   repositories.VoiceCharacterRepository
	registry *catalog.Registry
	logger   *slog.Logger
}

// NewVoiceService creates a new voice service.
func NewVoiceService(
	voices repositories.VoiceCharacterRepository,
	registry *catalog.Registry,
	logger *slog.Logger,
) *VoiceService {
	return &VoiceService{
		voices:   voices,
		registry: registry,
		logger:   logger,
	}
}

// Add registers the given voices. Entries whose provider ID is already stored
// are skipped rather than failing the whole batch; the returned slice holds
// only the voices actually created.
func (s *VoiceService) Add(ctx context.Context, inputs []VoiceInput) ([]models.VoiceCharacter, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no voices provided", domain.ErrValidation)
	}

	created := make([]models.VoiceCharacter, 0, len(inputs))
	for _, in := range inputs {
		if err := s.validateInput(&in); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}

		voice := models.VoiceCharacter{
			Name:         in.Name,
			ElevenLabsID: in.ElevenLabsID,
			CreatedAt:    time.Now(),
		}

		err := s.voices.Create(ctx, &voice)
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Debug("voice already registered", "eleven_labs_id", in.ElevenLabsID)
			continue
		}
		if err != nil {
			return nil, err
		}
		created = append(created, voice)
	}

	s.logger.Info("voices registered", "requested", len(inputs), "created", len(created))
	return created, nil
}

// List returns the full catalog: stored voices layered over the embedded
// seed, deduplicated by provider ID with stored entries winning.
func (s *VoiceService) List(ctx context.Context) ([]models.VoiceCharacter, error) {
	stored, err := s.voices.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(stored))
	merged := make([]models.VoiceCharacter, 0, len(stored))
	for _, v := range stored {
		seen[v.ElevenLabsID] = true
		merged = append(merged, v)
	}
	for _, v := range s.registry.Seed() {
		if !seen[v.ElevenLabsID] {
			merged = append(merged, v)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged, nil
}

func (s *VoiceService) validateInput(in *VoiceInput) error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.ElevenLabsID, validation.Required, validation.Length(1, 100)),
	)
}
