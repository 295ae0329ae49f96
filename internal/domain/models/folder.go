package models

import "time"

// Folder groups uploaded files under a single owner.
// The ID is a short allocated identifier, unique across all folders.
// Folder names are unique per owner.
type Folder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OwnerID    int64     `json:"owner_id"`
	StorageDir string    `json:"storage_dir,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// File is uploaded object metadata. The bytes live in object storage under
// StorageKey; the row only records where they went.
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StorageKey string    `json:"storage_key"`
	FolderID   string    `json:"folder_id"`
	CreatedAt  time.Time `json:"created_at"`
}
