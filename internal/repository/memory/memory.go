// Package memory provides in-memory repository implementations for dev mode
// and tests. All stores are safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"studybuddy/internal/domain"
	"studybuddy/internal/domain/models"
)

// UserRepository is an in-memory UserRepository.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]models.User
}

// NewUserRepository creates an empty in-memory user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]models.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return &domain.ConflictError{
				Message:      "user already exists with that email or username",
				ResourceType: "user",
				ResourceID:   u.Email,
			}
		}
	}

	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, domain.ErrNotFound)
}

// FolderRepository is an in-memory FolderRepository.
type FolderRepository struct {
	mu      sync.RWMutex
	folders map[string]models.Folder
}

// NewFolderRepository creates an empty in-memory folder store.
func NewFolderRepository() *FolderRepository {
	return &FolderRepository{folders: make(map[string]models.Folder)}
}

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Single critical section stands in for the database unique constraints:
	// both the duplicate-name check and the ID reservation happen atomically.
	for _, f := range r.folders {
		if f.OwnerID == folder.OwnerID && f.Name == folder.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists", folder.Name),
				ResourceType: "folder",
				ResourceID:   f.ID,
			}
		}
	}
	if _, ok := r.folders[folder.ID]; ok {
		return fmt.Errorf("folder %q: %w", folder.Name, domain.ErrConflict)
	}

	r.folders[folder.ID] = *folder
	return nil
}

func (r *FolderRepository) GetByNameAndOwner(ctx context.Context, name string, ownerID int64) (*models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.folders {
		if f.OwnerID == ownerID && f.Name == name {
			folder := f
			return &folder, nil
		}
	}
	return nil, fmt.Errorf("folder %q: %w", name, domain.ErrNotFound)
}

func (r *FolderRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.folders[id]
	return ok, nil
}

func (r *FolderRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var folders []models.Folder
	for _, f := range r.folders {
		if f.OwnerID == ownerID {
			folders = append(folders, f)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

// FileRepository is an in-memory FileRepository.
type FileRepository struct {
	mu    sync.RWMutex
	files map[string]models.File
}

// NewFileRepository creates an empty in-memory file store.
func NewFileRepository() *FileRepository {
	return &FileRepository{files: make(map[string]models.File)}
}

func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.files {
		if f.FolderID == file.FolderID && f.Name == file.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this folder", file.Name),
				ResourceType: "file",
				ResourceID:   f.ID,
			}
		}
	}
	if _, ok := r.files[file.ID]; ok {
		return fmt.Errorf("file %q: %w", file.Name, domain.ErrConflict)
	}

	r.files[file.ID] = *file
	return nil
}

func (r *FileRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.files[id]
	return ok, nil
}

func (r *FileRepository) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var files []models.File
	for _, f := range r.files {
		if f.FolderID == folderID {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// VoiceRepository is an in-memory VoiceCharacterRepository.
type VoiceRepository struct {
	mu     sync.RWMutex
	nextID int64
	voices map[int64]models.VoiceCharacter
}

// NewVoiceRepository creates an empty in-memory voice store.
func NewVoiceRepository() *VoiceRepository {
	return &VoiceRepository{voices: make(map[int64]models.VoiceCharacter)}
}

func (r *VoiceRepository) Create(ctx context.Context, voice *models.VoiceCharacter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.voices {
		if v.ElevenLabsID == voice.ElevenLabsID {
			return &domain.ConflictError{
				Message:      "voice already exists",
				ResourceType: "voice",
				ResourceID:   v.ElevenLabsID,
			}
		}
	}

	r.nextID++
	voice.ID = r.nextID
	r.voices[voice.ID] = *voice
	return nil
}

func (r *VoiceRepository) GetByElevenLabsID(ctx context.Context, elevenLabsID string) (*models.VoiceCharacter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.voices {
		if v.ElevenLabsID == elevenLabsID {
			voice := v
			return &voice, nil
		}
	}
	return nil, fmt.Errorf("voice %s: %w", elevenLabsID, domain.ErrNotFound)
}

func (r *VoiceRepository) List(ctx context.Context) ([]models.VoiceCharacter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	voices := make([]models.VoiceCharacter, 0, len(r.voices))
	for _, v := range r.voices {
		voices = append(voices, v)
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i].Name < voices[j].Name })
	return voices, nil
}
