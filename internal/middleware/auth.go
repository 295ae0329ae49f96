package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"studybuddy/internal/auth"
	"studybuddy/internal/domain"
	"studybuddy/internal/httputil"
)

// RequireIdentity validates the request's identity token and stores the
// verified subject email in the request context. Routes that also need a
// resource scope run the full gate pipeline in their handlers instead.
func RequireIdentity(gate *auth.Gate, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := auth.Credentials{Identity: httputil.IdentityFromRequest(r)}

			claims, err := gate.Identity(creds)
			if err != nil {
				logger.Debug("identity rejected", "path", r.URL.Path, "error", err)

				status := http.StatusUnauthorized
				var httpErr domain.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.StatusCode()
				}
				httputil.RespondError(w, status, err.Error())
				return
			}

			next.ServeHTTP(w, httputil.WithSubject(r, claims.SubjectEmail()))
		})
	}
}
