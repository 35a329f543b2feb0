package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/foliocms/folio/internal/auth"
)

// Verifier validates a session token.
type Verifier interface {
	Verify(token string) (*auth.Claims, bool)
}

// Session attaches the claims of a valid session cookie to the request.
// Requests without a valid session continue anonymously.
func Session(v Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := v.Verify(cookie.Value)
			if !ok {
				logger.Debug("session rejected",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("ip", r.RemoteAddr),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireAuth sends anonymous requests to loginPath. Requests made from
// scripts get a 401 instead.
func RequireAuth(loginPath string, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireAuth(loginPath, false, logger)
}

// RequireAuthJSON answers every anonymous request with a 401. It guards
// routes that only ever answer in JSON.
func RequireAuthJSON(logger *slog.Logger) func(http.Handler) http.Handler {
	return requireAuth("", true, logger)
}

func requireAuth(loginPath string, alwaysJSON bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.ClaimsFromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("authentication required",
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("ip", r.RemoteAddr),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			if alwaysJSON || fromScript(r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"authentication required"}`))
				return
			}
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
		})
	}
}

// fromScript reports whether r came from fetch or XHR rather than a page
// navigation.
func fromScript(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		r.Header.Get("Sec-Fetch-Mode") == "cors"
}
