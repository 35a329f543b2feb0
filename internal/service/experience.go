package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foliocms/folio/internal/metrics"
	"github.com/foliocms/folio/internal/model"
)

// DateLayout is the wire format of date form fields.
const DateLayout = "2006-01-02"

// ExperienceService manages work experiences and their images.
type ExperienceService struct {
	store           ExperienceStore
	images          images
	releaseOnDelete bool
	metrics         metrics.Recorder
	logger          *slog.Logger
}

// NewExperienceService creates a new ExperienceService.
func NewExperienceService(store ExperienceStore, objects ObjectStore, opts Options, logger *slog.Logger) *ExperienceService {
	return &ExperienceService{
		store:           store,
		images:          newImages(objects, opts, logger),
		releaseOnDelete: opts.ReleaseImageOnDelete,
		metrics:         metrics.OrNoop(opts.Metrics),
		logger:          logger,
	}
}

// List returns every experience in id order.
func (s *ExperienceService) List(ctx context.Context) ([]*model.Experience, error) {
	out, err := s.store.ListExperiences(ctx)
	if err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	return out, nil
}

// Get returns one experience.
func (s *ExperienceService) Get(ctx context.Context, id int64) (*model.Experience, error) {
	e, err := s.store.GetExperienceByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return e, nil
}

// Create stores an experience. An image is required.
func (s *ExperienceService) Create(ctx context.Context, in model.ExperienceInput, img *Upload) (*model.Experience, error) {
	in, err := validateExperience(in)
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

	e, err := s.store.CreateExperience(ctx, in, key)
	if err != nil {
		s.images.release(ctx, key, "create_failed")
		return nil, fmt.Errorf("create experience: %w", mapStoreError(err))
	}

	s.metrics.IncRecordWritten(metrics.KindExperience, metrics.OpCreate)
	s.logger.Info("experience_created", slog.Int64("id", e.ID), slog.String("image_key", key))
	return e, nil
}

// Update rewrites an experience. echoedKey is the image key the edit form
// carried; the stored key is authoritative.
func (s *ExperienceService) Update(ctx context.Context, id int64, in model.ExperienceInput, img *Upload, echoedKey string) (*model.Experience, error) {
	in, err := validateExperience(in)
	if err != nil {
		return nil, err
	}

	key, err := s.images.upload(ctx, img)
	if err != nil {
		return nil, err
	}

	e, prev, err := s.store.UpdateExperience(ctx, id, in, keyPtr(key))
	if err != nil {
		s.images.release(ctx, key, "update_failed")
		return nil, mapStoreError(err)
	}
	s.images.checkEcho(echoedKey, prev)
	s.images.replaced(ctx, prev, key)

	s.metrics.IncRecordWritten(metrics.KindExperience, metrics.OpUpdate)
	s.logger.Info("experience_updated", slog.Int64("id", e.ID), slog.Bool("image_replaced", key != ""))
	return e, nil
}

// Delete removes an experience row.
func (s *ExperienceService) Delete(ctx context.Context, id int64) error {
	key, err := s.store.DeleteExperience(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if s.releaseOnDelete {
		s.images.release(ctx, key, "deleted")
	}
	s.metrics.IncRecordWritten(metrics.KindExperience, metrics.OpDelete)
	s.logger.Info("experience_deleted", slog.Int64("id", id))
	return nil
}

// ParseDate parses a YYYY-MM-DD form value for field.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, missing(field)
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, invalid(field)
	}
	return d, nil
}

// ParseOptionalDate is ParseDate that maps an empty value to nil.
func ParseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func validateExperience(in model.ExperienceInput) (model.ExperienceInput, error) {
	in.Department = strings.TrimSpace(in.Department)
	in.Company = strings.TrimSpace(in.Company)
	switch {
	case in.Department == "":
		return in, missing("department")
	case in.Company == "":
		return in, missing("company")
	case in.StartDate.IsZero():
		return in, missing("start_date")
	case in.EndDate != nil && in.EndDate.Before(in.StartDate):
		return in, invalid("end_date")
	}
	return in, nil
}
