package handler

import (
	"context"
	"log/slog"
	"net/http"

	"studybuddy/internal/auth"
	"studybuddy/internal/domain/models"
	"studybuddy/internal/httputil"
	"studybuddy/internal/service"
)

// maxUploadBytes bounds the multipart form kept in memory before spilling to
// temp files.
const maxUploadBytes = 32 << 20

// FileHandler handles file HTTP requests. File routes target a folder named
// by a scope token, so each request runs the full authorization pipeline
// rather than just the identity middleware.
type FileHandler struct {
	files   *service.FileService
	folders *service.FolderService
	gate    *auth.Gate
	logger  *slog.Logger
}

// NewFileHandler creates a new file handler.
func NewFileHandler(files *service.FileService, folders *service.FolderService, gate *auth.Gate, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		files:   files,
		folders: folders,
		gate:    gate,
		logger:  logger,
	}
}

// authorize runs the gate over the request's carriers and resolves the scoped
// folder.
func (h *FileHandler) authorize(r *http.Request) (*auth.Grant[*models.Folder], error) {
	creds := auth.Credentials{
		Identity: httputil.IdentityFromRequest(r),
		Scope:    httputil.ScopeFromRequest(r, httputil.FolderScopeCookie),
	}

	return auth.Authorize(r.Context(), h.gate, creds, func(ctx context.Context, name, owner string) (*models.Folder, error) {
		return h.folders.Resolve(ctx, name, owner)
	})
}

// Upload stores a file in the scoped folder
// POST /file/upload (multipart/form-data, field "file")
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	grant, err := h.authorize(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer part.Close()

	file, err := h.files.Upload(
		r.Context(),
		grant.Resource,
		grant.Subject,
		header.Filename,
		header.Header.Get("Content-Type"),
		part,
	)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// List returns the scoped folder's files
// GET /file/listFiles
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	grant, err := h.authorize(r)
	if err != nil {
		handleError(w, err)
		return
	}

	files, err := h.files.List(r.Context(), grant.Resource)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"folder": grant.Resource,
		"files":  files,
	})
}
