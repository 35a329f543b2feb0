package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/foliocms/folio/internal/cache"
	"github.com/foliocms/folio/internal/view"
)

const (
	flashCookie   = "flash"
	flashIDCookie = "flash_id"
)

// FlashStore carries one message across a redirect.
type FlashStore interface {
	Set(w http.ResponseWriter, r *http.Request, f view.Flash)
	Pop(w http.ResponseWriter, r *http.Request) *view.Flash
}

// CookieFlashes keeps the message itself in a short-lived cookie.
type CookieFlashes struct {
	Secure bool
}

func (c CookieFlashes) Set(w http.ResponseWriter, _ *http.Request, f view.Flash) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, c.cookie(flashCookie, base64.RawURLEncoding.EncodeToString(data), int(cache.FlashTTL/time.Second)))
}

func (c CookieFlashes) Pop(w http.ResponseWriter, r *http.Request) *view.Flash {
	ck, err := r.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	http.SetCookie(w, c.cookie(flashCookie, "", -1))

	data, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	var f view.Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}

func (c CookieFlashes) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// FlashCache is the subset of cache.Cache used for flashes.
type FlashCache interface {
	SetFlash(ctx context.Context, id string, f cache.Flash) error
	PopFlash(ctx context.Context, id string) (*cache.Flash, error)
}

// RedisFlashes keeps messages in Redis; the browser only holds an id.
type RedisFlashes struct {
	store  FlashCache
	cookie CookieFlashes
	logger *slog.Logger
}

// NewRedisFlashes creates a RedisFlashes.
func NewRedisFlashes(store FlashCache, secure bool, logger *slog.Logger) *RedisFlashes {
	return &RedisFlashes{store: store, cookie: CookieFlashes{Secure: secure}, logger: logger}
}

func (rf *RedisFlashes) Set(w http.ResponseWriter, r *http.Request, f view.Flash) {
	id := uuid.NewString()
	if err := rf.store.SetFlash(r.Context(), id, cache.Flash{Kind: f.Kind, Message: f.Message}); err != nil {
		rf.logger.Warn("flash_store_failed", slog.String("error", err.Error()))
		return
	}
	http.SetCookie(w, rf.cookie.cookie(flashIDCookie, id, int(cache.FlashTTL/time.Second)))
}

func (rf *RedisFlashes) Pop(w http.ResponseWriter, r *http.Request) *view.Flash {
	ck, err := r.Cookie(flashIDCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	http.SetCookie(w, rf.cookie.cookie(flashIDCookie, "", -1))

	f, err := rf.store.PopFlash(r.Context(), ck.Value)
	if err != nil {
		rf.logger.Warn("flash_read_failed", slog.String("error", err.Error()))
		return nil
	}
	if f == nil {
		return nil
	}
	return &view.Flash{Kind: f.Kind, Message: f.Message}
}
