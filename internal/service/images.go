package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foliocms/folio/internal/metrics"
	"github.com/foliocms/folio/internal/storage"
)

// images runs the upload, persist, release sequence shared by all content
// services.
type images struct {
	store   ObjectStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

func newImages(store ObjectStore, opts Options, logger *slog.Logger) images {
	return images{store: store, metrics: metrics.OrNoop(opts.Metrics), logger: logger}
}

// upload stores f and returns its key. A nil f yields "".
func (im images) upload(ctx context.Context, f *Upload) (string, error) {
	if f == nil || len(f.Data) == 0 {
		return "", nil
	}
	key, err := im.store.Put(ctx, f.Data, f.Field, storage.ExtFromName(f.Filename))
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", f.Field, err)
	}
	im.metrics.IncImageUploaded(len(f.Data))
	return key, nil
}

// release deletes key and logs failures. Store errors never reach callers.
func (im images) release(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	if err := im.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		im.logger.Warn("image_release_failed",
			slog.String("key", key),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
		im.metrics.IncImageReleased("failed")
		return
	}
	im.metrics.IncImageReleased("success")
	im.logger.Debug("image_released", slog.String("key", key), slog.String("reason", reason))
}

// replaced releases prev once the row points at next.
func (im images) replaced(ctx context.Context, prev, next string) {
	if next == "" || prev == next {
		return
	}
	im.release(ctx, prev, "replaced")
}

func keyPtr(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}

// checkEcho logs when the key a form echoed back differs from the stored one.
// The stored key always wins.
func (im images) checkEcho(echo, stored string) {
	if echo == "" || echo == stored {
		return
	}
	im.logger.Warn("image_echo_mismatch",
		slog.String("echoed_key", echo),
		slog.String("stored_key", stored),
	)
}
