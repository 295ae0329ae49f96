package handler

import (
	"log/slog"
	"net/http"

	"studybuddy/internal/httputil"
	"studybuddy/internal/service"
)

// VoiceHandler handles voice catalog HTTP requests.
type VoiceHandler struct {
	voices *service.VoiceService
	logger *slog.Logger
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(voices *service.VoiceService, logger *slog.Logger) *VoiceHandler {
	return &VoiceHandler{
		voices: voices,
		logger: logger,
	}
}

type addVoicesRequest struct {
	Voices []service.VoiceInput `json:"voices"`
}

// Add registers new voices, skipping ones already present
// POST /voiceCharacter/addVoices
func (h *VoiceHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addVoicesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.voices.Add(r.Context(), req.Voices)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{"added": created})
}

// List returns the full voice catalog
// GET /voiceCharacter/list
func (h *VoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	voices, err := h.voices.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"voices": voices})
}
