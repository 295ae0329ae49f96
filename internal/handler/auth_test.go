package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/auth"
	"studybuddy/internal/idgen"
	"studybuddy/internal/middleware"
	"studybuddy/internal/repository/memory"
	"studybuddy/internal/service"
	"studybuddy/internal/storage"
)

// apiFixture wires the full HTTP surface over in-memory adapters, mirroring
// the production route table.
type apiFixture struct {
	mux    *http.ServeMux
	tokens *auth.TokenService
	scopes *auth.ScopeCodec
	store  *storage.MemoryStorage
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := memory.NewUserRepository()
	folders := memory.NewFolderRepository()
	files := memory.NewFileRepository()
	store := storage.NewMemoryStorage()

	tokens := auth.NewTokenService("test-secret", time.Hour)
	scopes := auth.NewScopeCodec("test-secret", time.Hour)
	gate := auth.NewGate(tokens, scopes)

	accountService := service.NewAccountService(users, auth.NewBcryptHasher(), tokens, logger)
	folderService := service.NewFolderService(folders, users, idgen.New(folders, service.FolderIDLength), scopes, logger)
	fileService := service.NewFileService(files, store, idgen.New(files, service.FileIDLength), logger)

	authHandler := NewAuthHandler(accountService, nil, time.Hour, "http://localhost:3000", logger)
	folderHandler := NewFolderHandler(folderService, time.Hour, logger)
	fileHandler := NewFileHandler(fileService, folderService, gate, logger)

	requireIdentity := middleware.RequireIdentity(gate, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", authHandler.Signup)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.Handle("GET /verifyToken", requireIdentity(http.HandlerFunc(authHandler.Verify)))
	mux.Handle("POST /folder/create", requireIdentity(http.HandlerFunc(folderHandler.Create)))
	mux.Handle("POST /folder/open", requireIdentity(http.HandlerFunc(folderHandler.Open)))
	mux.Handle("GET /folder/list", requireIdentity(http.HandlerFunc(folderHandler.List)))
	mux.HandleFunc("POST /file/upload", fileHandler.Upload)
	mux.HandleFunc("GET /file/listFiles", fileHandler.List)

	return &apiFixture{mux: mux, tokens: tokens, scopes: scopes, store: store}
}

func (f *apiFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) postJSON(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return f.do(req)
}

func (f *apiFixture) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return f.do(req)
}

// signup registers a user and returns the identity cookie.
func (f *apiFixture) signup(t *testing.T, username, email string) *http.Cookie {
	t.Helper()

	rec := f.postJSON("/signup",
		`{"username":"`+username+`","email":"`+email+`","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return cookieByName(t, rec, "jwt")
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("response carries no %q cookie", name)
	return nil
}

func TestSignupSetsIdentityCookie(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.postJSON("/signup", `{"username":"alice","email":"alice@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookie := cookieByName(t, rec, "jwt")
	assert.True(t, cookie.HttpOnly)

	claims, err := f.tokens.Validate(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.SubjectEmail())
}

func TestSignupRejectsBadBody(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.postJSON("/signup", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postJSON("/signup", `{"username":"a","email":"not-an-email","password":"correct-horse"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestLoginFlow(t *testing.T) {
	f := newAPIFixture(t)
	f.signup(t, "alice", "alice@example.com")

	rec := f.postJSON("/login", `{"login":"alice@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookieByName(t, rec, "jwt")

	rec = f.postJSON("/login", `{"login":"alice@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.postJSON("/login", `{"login":"ghost@example.com","password":"whatever"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyToken(t *testing.T) {
	f := newAPIFixture(t)
	identity := f.signup(t, "alice", "alice@example.com")

	rec := f.get("/verifyToken", identity)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")

	// No credential at all
	rec = f.get("/verifyToken")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage credential
	rec = f.get("/verifyToken", &http.Cookie{Name: "jwt", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyTokenBearerFallback(t *testing.T) {
	f := newAPIFixture(t)
	identity := f.signup(t, "alice", "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/verifyToken", nil)
	req.Header.Set("Authorization", "Bearer "+identity.Value)
	rec := f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutClearsCookies(t *testing.T) {
	f := newAPIFixture(t)
	identity := f.signup(t, "alice", "alice@example.com")

	rec := f.postJSON("/logout", ``, identity)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		assert.Less(t, c.MaxAge, 0, "cookie %q must expire", c.Name)
		assert.Empty(t, c.Value)
	}
}
