package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/catalog"
	"studybuddy/internal/domain"
	"studybuddy/internal/repository/memory"
)

func newVoiceFixture(t *testing.T) *VoiceService {
	t.Helper()

	registry, err := catalog.NewRegistry()
	require.NoError(t, err)
	return NewVoiceService(memory.NewVoiceRepository(), registry, testLogger())
}

func TestVoiceAdd(t *testing.T) {
	svc := newVoiceFixture(t)

	created, err := svc.Add(context.Background(), []VoiceInput{
		{Name: "Narrator", ElevenLabsID: "narrator-1"},
		{Name: "Announcer", ElevenLabsID: "announcer-1"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotZero(t, created[0].ID)
}

func TestVoiceAddSkipsExisting(t *testing.T) {
	svc := newVoiceFixture(t)

	_, err := svc.Add(context.Background(), []VoiceInput{{Name: "Narrator", ElevenLabsID: "narrator-1"}})
	require.NoError(t, err)

	created, err := svc.Add(context.Background(), []VoiceInput{
		{Name: "Narrator Again", ElevenLabsID: "narrator-1"},
		{Name: "Announcer", ElevenLabsID: "announcer-1"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Announcer", created[0].Name)
}

func TestVoiceAddValidation(t *testing.T) {
	svc := newVoiceFixture(t)

	_, err := svc.Add(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Add(context.Background(), []VoiceInput{{Name: "", ElevenLabsID: "x"}})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVoiceListLayersSeedAndStored(t *testing.T) {
	svc := newVoiceFixture(t)

	seedOnly, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, seedOnly, "the embedded seed catalog must show up")

	_, err = svc.Add(context.Background(), []VoiceInput{{Name: "Narrator", ElevenLabsID: "narrator-1"}})
	require.NoError(t, err)

	merged, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, merged, len(seedOnly)+1)

	// Registering a voice with a seed voice's provider ID must not duplicate it
	_, err = svc.Add(context.Background(), []VoiceInput{{Name: seedOnly[0].Name, ElevenLabsID: seedOnly[0].ElevenLabsID}})
	require.NoError(t, err)

	again, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, again, len(merged), "stored copy shadows the seed entry")
}
