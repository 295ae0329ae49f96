package httputil

import (
	"net/http"
	"strings"
	"time"
)

// Credential carrier names. The identity token rides in the "jwt" cookie with
// an Authorization: Bearer fallback; scope tokens ride in a cookie named after
// the resource kind.
const (
	IdentityCookie    = "jwt"
	FolderScopeCookie = "folderSession"
)

// IdentityFromRequest extracts the raw identity token, preferring the cookie
// over the Authorization header. Returns "" when neither carrier is present.
func IdentityFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(IdentityCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// ScopeFromRequest extracts the raw (still percent-encoded) scope token from
// its cookie. Returns "" when absent.
func ScopeFromRequest(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetIdentityCookie attaches the identity token as an HTTP-only cookie.
func SetIdentityCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     IdentityCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetScopeCookie attaches a scope token under the resource kind's cookie name
// with Max-Age equal to the scope TTL.
func SetScopeCookie(w http.ResponseWriter, name, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires a cookie. Issued tokens stay valid until their own
// expiry; there is no server-side revocation.
func ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
