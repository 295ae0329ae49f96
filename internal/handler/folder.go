package handler

import (
	"log/slog"
	"net/http"
	"time"

	"studybuddy/internal/domain/models"
	"studybuddy/internal/httputil"
	"studybuddy/internal/service"
)

// FolderHandler handles folder HTTP requests. All routes here sit behind the
// identity middleware; the subject email is already in the request context.
type FolderHandler struct {
	folders  *service.FolderService
	scopeTTL time.Duration
	logger   *slog.Logger
}

// NewFolderHandler creates a new folder handler.
func NewFolderHandler(folders *service.FolderService, scopeTTL time.Duration, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folders:  folders,
		scopeTTL: scopeTTL,
		logger:   logger,
	}
}

type folderRequest struct {
	Name string `json:"name"`
}

// Create makes a new folder and grants the caller a scope for it
// POST /folder/create
// Returns 201 if created, 409 with the existing folder if the name is taken
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	subject := httputil.GetSubject(r)

	var req folderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, scope, err := h.folders.Create(r.Context(), subject, req.Name)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Folder, error) {
			return h.folders.Resolve(r.Context(), req.Name, subject)
		})
		return
	}

	httputil.SetScopeCookie(w, httputil.FolderScopeCookie, scope, h.scopeTTL)
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// Open resolves an existing folder by name and grants a fresh scope for it
// POST /folder/open
func (h *FolderHandler) Open(w http.ResponseWriter, r *http.Request) {
	subject := httputil.GetSubject(r)

	var req folderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, scope, err := h.folders.Open(r.Context(), subject, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.SetScopeCookie(w, httputil.FolderScopeCookie, scope, h.scopeTTL)
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// List returns the caller's folders
// GET /folder/list
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	subject := httputil.GetSubject(r)

	folders, err := h.folders.List(r.Context(), subject)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"folders": folders})
}
