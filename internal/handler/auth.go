package handler

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"studybuddy/internal/auth"
	"studybuddy/internal/httputil"
	"studybuddy/internal/service"
)

// stateCookie carries the OAuth CSRF state between the login redirect and the
// provider callback.
const stateCookie = "oauthState"

// AuthHandler handles registration, login and the Google OAuth hand-off.
type AuthHandler struct {
	accounts    *service.AccountService
	google      *auth.GoogleVerifier // nil when OAuth is not configured
	tokenTTL    time.Duration
	frontendURL string
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	accounts *service.AccountService,
	google *auth.GoogleVerifier,
	tokenTTL time.Duration,
	frontendURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:    accounts,
		google:      google,
		tokenTTL:    tokenTTL,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// authResponse is the body returned by signup and login. The token is also
// set as a cookie; it is echoed in the body for non-browser clients.
type authResponse struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}

// Signup registers a new account and logs it in
// POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.accounts.Signup(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.SetIdentityCookie(w, token, h.tokenTTL)
	httputil.RespondJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

// Login authenticates a credential pair
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.SetIdentityCookie(w, token, h.tokenTTL)
	httputil.RespondJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

// Logout clears the credential cookies. Issued tokens stay valid until their
// own expiry; this only removes them from the browser.
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.ClearCookie(w, httputil.IdentityCookie)
	httputil.ClearCookie(w, httputil.FolderScopeCookie)
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Verify returns the account behind a valid identity token
// GET /verifyToken
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	subject := httputil.GetSubject(r)

	user, err := h.accounts.Verify(r.Context(), subject)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// GoogleLogin redirects to the Google consent screen
// GET /auth/google/login
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "google login is not configured")
		return
	}

	state, err := randomState()
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback completes the OAuth hand-off: verify state, exchange the
// code, extract the profile, find-or-create the account, issue a token.
// GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "google login is not configured")
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		httputil.RespondError(w, http.StatusBadRequest, "oauth state mismatch")
		return
	}
	httputil.ClearCookie(w, stateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	oauthToken, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed", "error", err)
		httputil.RespondError(w, http.StatusUnauthorized, "oauth exchange failed")
		return
	}

	profile, err := h.google.Profile(r.Context(), oauthToken)
	if err != nil {
		h.logger.Warn("oauth profile extraction failed", "error", err)
		httputil.RespondError(w, http.StatusUnauthorized, "could not verify google profile")
		return
	}

	_, token, err := h.accounts.OAuthLogin(r.Context(), profile)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.SetIdentityCookie(w, token, h.tokenTTL)
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
