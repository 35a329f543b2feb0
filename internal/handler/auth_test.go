package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/internal/auth"
)

func popFlash(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	c := cookieNamed(rec, flashCookie)
	require.NotNil(t, c, "expected a flash cookie")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	f := CookieFlashes{}.Pop(httptest.NewRecorder(), req)
	require.NotNil(t, f)
	return f.Message
}

func register(t *testing.T, env *testEnv, name, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return env.do(formRequest("/auth/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	}))
}

func TestAuthHandler_RegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := register(t, env, "Ada", "ada@x.io", "pw1")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, loginPath, rec.Header().Get("Location"))
	assert.Equal(t, 1, env.store.UserCount())

	rec = env.do(formRequest("/auth/login", url.Values{"email": {"ada@x.io"}, "password": {"pw1"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, homePath, rec.Header().Get("Location"))

	session := cookieNamed(rec, auth.CookieName)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, 3600, session.MaxAge)

	claims, ok := env.issuer.Verify(session.Value)
	require.True(t, ok)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@x.io", claims.Email)
}

func TestAuthHandler_DuplicateRegistration(t *testing.T) {
	env := newTestEnv(t)

	register(t, env, "Ada", "ada@x.io", "pw1")
	rec := register(t, env, "Ada Again", "ada@x.io", "pw2")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, registerPath, rec.Header().Get("Location"))
	assert.Equal(t, "email already registered", popFlash(t, rec))
	assert.Equal(t, 1, env.store.UserCount())
}

func TestAuthHandler_RegisterMissingField(t *testing.T) {
	env := newTestEnv(t)

	rec := register(t, env, "", "ada@x.io", "pw1")
	assert.Equal(t, registerPath, rec.Header().Get("Location"))
	assert.Equal(t, "name is required.", popFlash(t, rec))
	assert.Equal(t, 0, env.store.UserCount())
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "Ada", "ada@x.io", "pw1")

	tests := []struct {
		name    string
		email   string
		message string
	}{
		{"unknown email", "bob@x.io", "email not found"},
		{"wrong password", "ada@x.io", "wrong password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(formRequest("/auth/login", url.Values{"email": {tt.email}, "password": {"nope"}}))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, loginPath, rec.Header().Get("Location"))
			assert.Nil(t, cookieNamed(rec, auth.CookieName))
			assert.Equal(t, tt.message, popFlash(t, rec))
		})
	}
}

func TestAuthHandler_FlashShownOnce(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(formRequest("/auth/login", url.Values{"email": {"nobody@x.io"}, "password": {"x"}}))
	flash := cookieNamed(rec, flashCookie)
	require.NotNil(t, flash)

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req.AddCookie(flash)
	rec = env.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "email not found")

	cleared := cookieNamed(rec, flashCookie)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	c := cookieNamed(rec, auth.CookieName)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestAuthHandler_SignedInNameShown(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.issuer.Issue("Ada", "ada@x.io")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tech", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span class="user">Ada</span>`)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/tech", nil))
	assert.False(t, strings.Contains(rec.Body.String(), `class="user"`))
}
