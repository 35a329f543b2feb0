package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foliocms/folio/internal/metrics"
	"github.com/foliocms/folio/internal/model"
)

// TechService manages tech badges and their images.
type TechService struct {
	store           TechStore
	images          images
	releaseOnDelete bool
	metrics         metrics.Recorder
	logger          *slog.Logger
}

// NewTechService creates a new TechService.
func NewTechService(store TechStore, objects ObjectStore, opts Options, logger *slog.Logger) *TechService {
	return &TechService{
		store:           store,
		images:          newImages(objects, opts, logger),
		releaseOnDelete: opts.ReleaseImageOnDelete,
		metrics:         metrics.OrNoop(opts.Metrics),
		logger:          logger,
	}
}

// List returns every tech in id order.
func (s *TechService) List(ctx context.Context) ([]*model.Tech, error) {
	out, err := s.store.ListTech(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tech: %w", err)
	}
	return out, nil
}

// Get returns one tech.
func (s *TechService) Get(ctx context.Context, id int64) (*model.Tech, error) {
	t, err := s.store.GetTechByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return t, nil
}

// Create stores a tech. An image is required.
func (s *TechService) Create(ctx context.Context, in model.TechInput, img *Upload) (*model.Tech, error) {
	in, err := validateTech(in)
	if err != nil {
		return nil, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, &ValidationError{Field: "image", Err: ErrMissingFile}
	}

	key, err := s.images.upload(ctx, img)
	if err != nil {
		return nil, err
	}

	t, err := s.store.CreateTech(ctx, in, key)
	if err != nil {
		s.images.release(ctx, key, "create_failed")
		return nil, fmt.Errorf("create tech: %w", mapStoreError(err))
	}

	s.metrics.IncRecordWritten(metrics.KindTech, metrics.OpCreate)
	s.logger.Info("tech_created", slog.Int64("id", t.ID), slog.String("image_key", key))
	return t, nil
}

// Update rewrites a tech. A nil img keeps the current image; otherwise the
// new image replaces it and the old object is released after the row is saved.
func (s *TechService) Update(ctx context.Context, id int64, in model.TechInput, img *Upload) (*model.Tech, error) {
	in, err := validateTech(in)
	if err != nil {
		return nil, err
	}

	key, err := s.images.upload(ctx, img)
	if err != nil {
		return nil, err
	}

	t, prev, err := s.store.UpdateTech(ctx, id, in, keyPtr(key))
	if err != nil {
		s.images.release(ctx, key, "update_failed")
		return nil, mapStoreError(err)
	}
	s.images.replaced(ctx, prev, key)

	s.metrics.IncRecordWritten(metrics.KindTech, metrics.OpUpdate)
	s.logger.Info("tech_updated", slog.Int64("id", t.ID), slog.Bool("image_replaced", key != ""))
	return t, nil
}

// Delete removes a tech row.
func (s *TechService) Delete(ctx context.Context, id int64) error {
	key, err := s.store.DeleteTech(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if s.releaseOnDelete {
		s.images.release(ctx, key, "deleted")
	}
	s.metrics.IncRecordWritten(metrics.KindTech, metrics.OpDelete)
	s.logger.Info("tech_deleted", slog.Int64("id", id))
	return nil
}

func validateTech(in model.TechInput) (model.TechInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, missing("name")
	}
	return in, nil
}
