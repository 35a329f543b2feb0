package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	flashPrefix = "flash:"
	// FlashTTL bounds how long an unread flash survives.
	FlashTTL = 5 * time.Minute
)

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func flashKey(id string) string {
	return flashPrefix + id
}

// SetFlash stores f under id until it is read or FlashTTL passes.
func (c *Cache) SetFlash(ctx context.Context, id string, f Flash) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode flash: %w", err)
	}
	if err := c.client.Set(ctx, flashKey(id), data, FlashTTL).Err(); err != nil {
		return fmt.Errorf("failed to store flash: %w", err)
	}
	return nil
}

// PopFlash returns and removes the flash stored under id.
// A missing flash returns (nil, nil).
func (c *Cache) PopFlash(ctx context.Context, id string) (*Flash, error) {
	data, err := c.client.GetDel(ctx, flashKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read flash: %w", err)
	}

	var f Flash
	if err := json.Unmarshal(data, &f); err != nil {
		// Corrupted entry, treat as absent.
		return nil, nil //nolint:nilerr
	}
	return &f, nil
}
