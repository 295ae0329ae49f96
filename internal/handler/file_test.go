package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/auth"
)

// createFolder makes a folder over HTTP and returns its scope cookie.
func (f *apiFixture) createFolder(t *testing.T, identity *http.Cookie, name string) *http.Cookie {
	t.Helper()

	rec := f.postJSON("/folder/create", `{"name":"`+name+`"}`, identity)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return cookieByName(t, rec, "folderSession")
}

// uploadRequest builds a multipart upload of one file.
func uploadRequest(t *testing.T, filename, content string, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/file/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestFolderCreateAndOpen(t *testing.T) {
	f := newAPIFixture(t)
	identity := f.signup(t, "alice", "alice@example.com")

	scope := f.createFolder(t, identity, "notes")
	payload, err := f.scopes.Decode(scope.Value)
	require.NoError(t, err)
	assert.Equal(t, "notes", payload.Name)
	assert.Equal(t, "alice@example.com", payload.Owner)

	// Duplicate create returns the existing folder with 409
	rec := f.postJSON("/folder/create", `{"name":"notes"}`, identity)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes")

	// Open re-mints a scope for the same folder
	rec = f.postJSON("/folder/open", `{"name":"notes"}`, identity)
	require.Equal(t, http.StatusOK, rec.Code)
	cookieByName(t, rec, "folderSession")

	// Unknown folder
	rec = f.postJSON("/folder/open", `{"name":"nope"}`, identity)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFolderListRequiresIdentity(t *testing.T) {
	f := newAPIFixture(t)
	identity := f.signup(t, "alice", "alice@example.com")
	f.createFolder(t, identity, "notes")

	rec := f.get("/folder/list", identity)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes")

	rec = f.get("/folder/list")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFileUploadAndList(t *testing.T) {
	f := newAPIFixture(t)
	identity := f.signup(t, "alice", "alice@example.com")
	scope := f.createFolder(t, identity, "notes")

	rec := f.do(uploadRequest(t, "report.pdf", "pdf bytes", identity, scope))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, 1, f.store.Len())

	rec = f.get("/file/listFiles", identity, scope)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "report.pdf")

	// Same name again conflicts
	rec = f.do(uploadRequest(t, "report.pdf", "other bytes", identity, scope))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// Every failure mode of the authorization pipeline, through the HTTP surface.
func TestFileRoutesAuthorizationMatrix(t *testing.T) {
	f := newAPIFixture(t)
	alice := f.signup(t, "alice", "alice@example.com")
	bob := f.signup(t, "bob", "bob@example.com")
	aliceScope := f.createFolder(t, alice, "notes")

	forged, err := auth.NewScopeCodec("attacker-secret", time.Hour).Encode("notes", "alice@example.com")
	require.NoError(t, err)

	// Scope for a folder that does not exist
	ghostScope, err := f.scopes.Encode("ghost", "alice@example.com")
	require.NoError(t, err)

	// Legacy unsigned scope value
	legacy := url.QueryEscape("notes#alice@example.com")

	cases := []struct {
		name    string
		cookies []*http.Cookie
		want    int
	}{
		{"no credentials", nil, http.StatusUnauthorized},
		{"identity only", []*http.Cookie{alice}, http.StatusBadRequest},
		{"scope only", []*http.Cookie{aliceScope}, http.StatusUnauthorized},
		{"happy path", []*http.Cookie{alice, aliceScope}, http.StatusOK},
		{"bob with alice's scope", []*http.Cookie{bob, aliceScope}, http.StatusForbidden},
		{"forged scope signature", []*http.Cookie{alice, {Name: "folderSession", Value: forged}}, http.StatusUnauthorized},
		{"unsigned legacy scope", []*http.Cookie{alice, {Name: "folderSession", Value: legacy}}, http.StatusBadRequest},
		{"scope for missing folder", []*http.Cookie{alice, {Name: "folderSession", Value: ghostScope}}, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.get("/file/listFiles", tc.cookies...)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestFileUploadRejectsMissingFileField(t *testing.T) {
	f := newAPIFixture(t)
	identity := f.signup(t, "alice", "alice@example.com")
	scope := f.createFolder(t, identity, "notes")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("note", "no file here"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/file/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(identity)
	req.AddCookie(scope)

	rec := f.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
