package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foliocms/folio/internal/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" {
		t.Fatal("expected generated request id")
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q != context id %q", rec.Header().Get(RequestIDHeader), seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Errorf("expected client id to be reused, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if len(seen) > maxRequestIDLength {
		t.Errorf("oversized client id should be replaced, got length %d", len(seen))
	}
}

func TestLogger_LevelAndUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("hello"))
			}))

			req := httptest.NewRequest(http.MethodGet, "/tech", nil)
			req = req.WithContext(auth.ContextWithClaims(req.Context(), &auth.Claims{Email: "ada@x.io"}))
			h.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log is not JSON: %v (%s)", err, buf.String())
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["user"] != "ada@x.io" {
				t.Errorf("user = %v, want ada@x.io", entry["user"])
			}
			if entry["bytes"] != float64(5) {
				t.Errorf("bytes = %v, want 5", entry["bytes"])
			}
		})
	}
}

func TestLogger_NoCookieValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := Logger(slog.New(slog.NewJSONHandler(&buf, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/tech", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "eyJhbGciOiJIUzI1NiJ9.secret"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if strings.Contains(buf.String(), "eyJhbGciOiJIUzI1NiJ9") {
		t.Errorf("session token leaked into logs: %s", buf.String())
	}
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := Recoverer(slog.New(slog.NewJSONHandler(&buf, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("expected panic to be logged, got %s", buf.String())
	}
}

func TestSecurity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		isDev  bool
		header string
		want   string
	}{
		{"nosniff", false, "X-Content-Type-Options", "nosniff"},
		{"frame", false, "X-Frame-Options", "DENY"},
		{"hsts in production", false, "Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
		{"no hsts in development", true, "Strict-Transport-Security", ""},
		{"no-store", false, "Cache-Control", "no-store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Security(SecurityConfig{IsDevelopment: tt.isDev})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if got := rec.Header().Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestSecurity_CSPAllowsImageOrigins(t *testing.T) {
	t.Parallel()

	h := Security(SecurityConfig{ImageOrigins: []string{"https://folio.s3.eu-west-1.amazonaws.com"}})(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "img-src 'self' data: https://folio.s3.eu-west-1.amazonaws.com") {
		t.Errorf("unexpected CSP: %s", csp)
	}
	if !strings.Contains(csp, "frame-ancestors 'none'") {
		t.Errorf("CSP should forbid framing: %s", csp)
	}
}

func TestMaxBodySize(t *testing.T) {
	t.Parallel()

	h := MaxBodySize(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 20))))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSession(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenIssuer("test-secret")
	valid, err := issuer.Issue("Ada", "ada@x.io")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	expired, err := auth.NewTokenIssuer("test-secret", auth.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	})).Issue("Ada", "ada@x.io")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name   string
		cookie string
		want   string
	}{
		{"no cookie", "", ""},
		{"valid", valid, "Ada"},
		{"expired", expired, ""},
		{"garbage", "garbage", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var name string
			var called bool
			h := Session(issuer, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				name = auth.NameFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/tech", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tt.cookie})
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if !called {
				t.Fatal("session middleware must never block a request")
			}
			if name != tt.want {
				t.Errorf("name = %q, want %q", name, tt.want)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	h := RequireAuth("/auth/login", discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tech/create", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth/login" {
		t.Errorf("anonymous form post: status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodPost, "/tech/update/1", nil)
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous JSON request: status=%d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/tech/create", nil)
	req = req.WithContext(auth.ContextWithClaims(req.Context(), &auth.Claims{Name: "Ada"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("signed-in request: status=%d, want 204", rec.Code)
	}
}

func TestRequireAuth_ScriptRequests(t *testing.T) {
	t.Parallel()

	h := RequireAuth("/auth/login", discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"navigation", "Sec-Fetch-Mode", "navigate", http.StatusSeeOther},
		{"fetch", "Sec-Fetch-Mode", "cors", http.StatusUnauthorized},
		{"xhr", "X-Requested-With", "XMLHttpRequest", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tech/update/1", nil)
			req.Header.Set(tt.header, tt.value)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status=%d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireAuthJSON(t *testing.T) {
	t.Parallel()

	h := RequireAuthJSON(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tech/update/1", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous request without headers: status=%d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type=%q, want application/json", ct)
	}
}
