// Package catalog holds the built-in voice characters shipped with the
// server. Stored voices are layered on top by the voice service.
package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"studybuddy/internal/domain/models"
)

//go:embed voices.yaml
var seedFile embed.FS

type seedVoice struct {
	Name         string `yaml:"name"`
	ElevenLabsID string `yaml:"eleven_labs_id"`
}

type seedDocument struct {
	Voices []seedVoice `yaml:"voices"`
}

// Registry exposes the embedded seed catalog.
type Registry struct {
	voices []models.VoiceCharacter
}

// NewRegistry loads the embedded seed file.
func NewRegistry() (*Registry, error) {
	data, err := seedFile.ReadFile("voices.yaml")
	if err != nil {
		return nil, fmt.Errorf("read voice seed: %w", err)
	}

	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal voice seed: %w", err)
	}

	voices := make([]models.VoiceCharacter, 0, len(doc.Voices))
	for _, v := range doc.Voices {
		if v.Name == "" || v.ElevenLabsID == "" {
			return nil, fmt.Errorf("voice seed entry missing name or id: %+v", v)
		}
		voices = append(voices, models.VoiceCharacter{
			Name:         v.Name,
			ElevenLabsID: v.ElevenLabsID,
		})
	}

	return &Registry{voices: voices}, nil
}

// Seed returns the built-in voices. The slice is a copy; callers may mutate it.
func (r *Registry) Seed() []models.VoiceCharacter {
	out := make([]models.VoiceCharacter, len(r.voices))
	copy(out, r.voices)
	return out
}
