package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/internal/cache"
	"github.com/foliocms/folio/internal/testutil"
	"github.com/foliocms/folio/internal/view"
)

type memoryFlashCache struct {
	mu      sync.Mutex
	entries map[string]cache.Flash
	err     error
}

func (m *memoryFlashCache) SetFlash(_ context.Context, id string, f cache.Flash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.entries == nil {
		m.entries = make(map[string]cache.Flash)
	}
	m.entries[id] = f
	return nil
}

func (m *memoryFlashCache) PopFlash(_ context.Context, id string) (*cache.Flash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	delete(m.entries, id)
	return &f, nil
}

func roundTrip(t *testing.T, store FlashStore, cookieName string) (*view.Flash, *view.Flash) {
	t.Helper()

	rec := httptest.NewRecorder()
	store.Set(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil), view.Flash{Kind: "error", Message: "wrong password"})
	c := cookieNamed(rec, cookieName)
	require.NotNil(t, c)

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req.AddCookie(c)
	first := store.Pop(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req.AddCookie(c)
	second := store.Pop(httptest.NewRecorder(), req)
	return first, second
}

func TestCookieFlashes(t *testing.T) {
	first, _ := roundTrip(t, CookieFlashes{}, flashCookie)
	require.NotNil(t, first)
	assert.Equal(t, view.Flash{Kind: "error", Message: "wrong password"}, *first)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "%%%not-base64"})
	assert.Nil(t, CookieFlashes{}.Pop(httptest.NewRecorder(), req))
}

func TestRedisFlashes_ReadOnce(t *testing.T) {
	store := NewRedisFlashes(&memoryFlashCache{}, false, testutil.DiscardLogger())

	first, second := roundTrip(t, store, flashIDCookie)
	require.NotNil(t, first)
	assert.Equal(t, "wrong password", first.Message)
	assert.Nil(t, second, "a flash is shown once")
}

func TestRedisFlashes_StoreFailure(t *testing.T) {
	store := NewRedisFlashes(&memoryFlashCache{err: testutil.ErrInjected}, false, testutil.DiscardLogger())

	rec := httptest.NewRecorder()
	store.Set(rec, httptest.NewRequest(http.MethodPost, "/", nil), view.Flash{Message: "x"})
	assert.Nil(t, cookieNamed(rec, flashIDCookie))
}
