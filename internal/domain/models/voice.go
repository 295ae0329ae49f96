package models

import "time"

// VoiceCharacter is a catalog entry for a text-to-speech voice.
// ElevenLabsID is the upstream provider identifier and must be unique.
type VoiceCharacter struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ElevenLabsID string    `json:"eleven_labs_id"`
	CreatedAt    time.Time `json:"created_at"`
}
