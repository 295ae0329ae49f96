package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/domain"
	"studybuddy/internal/domain/models"
	"studybuddy/internal/idgen"
	"studybuddy/internal/repository/memory"
	"studybuddy/internal/storage"
)

type fileFixture struct {
	files  *memory.FileRepository
	store  *storage.MemoryStorage
	svc    *FileService
	folder *models.Folder
}

func newFileFixture(t *testing.T) *fileFixture {
	t.Helper()

	files := memory.NewFileRepository()
	store := storage.NewMemoryStorage()

	return &fileFixture{
		files: files,
		store: store,
		svc:   NewFileService(files, store, idgen.New(files, FileIDLength), testLogger()),
		folder: &models.Folder{
			ID:         "f0ldr1d",
			Name:       "notes",
			OwnerID:    1,
			StorageDir: "f0ldr1d",
			CreatedAt:  time.Now(),
		},
	}
}

func TestFileUpload(t *testing.T) {
	f := newFileFixture(t)

	file, err := f.svc.Upload(context.Background(), f.folder, "alice@example.com",
		"report.pdf", "application/pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	assert.Len(t, file.ID, FileIDLength)
	assert.Equal(t, "report.pdf", file.Name)
	assert.Equal(t, f.folder.ID, file.FolderID)
	assert.Equal(t, "f0ldr1d/report.pdf-alice@example.com", file.StorageKey)

	data, ok := f.store.Get(file.StorageKey)
	require.True(t, ok, "bytes must land under the recorded key")
	assert.Equal(t, "pdf bytes", string(data))
}

func TestFileUploadDuplicateName(t *testing.T) {
	f := newFileFixture(t)

	first, err := f.svc.Upload(context.Background(), f.folder, "alice@example.com",
		"report.pdf", "application/pdf", strings.NewReader("original"))
	require.NoError(t, err)

	_, err = f.svc.Upload(context.Background(), f.folder, "alice@example.com",
		"report.pdf", "application/pdf", strings.NewReader("imposter"))
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.ResourceID)

	// The original bytes survive the rejected upload
	data, ok := f.store.Get(first.StorageKey)
	require.True(t, ok)
	assert.Equal(t, "original", string(data))
}

func TestFileUploadInvalidNames(t *testing.T) {
	f := newFileFixture(t)

	for _, name := range []string{"", "a/b.txt", "notes#1.txt"} {
		_, err := f.svc.Upload(context.Background(), f.folder, "alice@example.com",
			name, "", strings.NewReader("x"))
		assert.ErrorIs(t, err, domain.ErrValidation, "name %q", name)
	}
	assert.Equal(t, 0, f.store.Len(), "rejected uploads must not write bytes")
}

func TestFileList(t *testing.T) {
	f := newFileFixture(t)

	for _, name := range []string{"b.txt", "a.txt"} {
		_, err := f.svc.Upload(context.Background(), f.folder, "alice@example.com",
			name, "text/plain", strings.NewReader(name))
		require.NoError(t, err)
	}

	// A different folder's files stay invisible
	other := &models.Folder{ID: "other1", Name: "misc", OwnerID: 1, StorageDir: "other1"}
	_, err := f.svc.Upload(context.Background(), other, "alice@example.com",
		"c.txt", "text/plain", strings.NewReader("c"))
	require.NoError(t, err)

	files, err := f.svc.List(context.Background(), f.folder)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Name)
	assert.Equal(t, "b.txt", files[1].Name)
}
