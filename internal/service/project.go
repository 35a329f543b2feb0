package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/foliocms/folio/internal/metrics"
	"github.com/foliocms/folio/internal/model"
)

// ProjectService manages showcased projects and their images.
type ProjectService struct {
	store           ProjectStore
	images          images
	releaseOnDelete bool
	metrics         metrics.Recorder
	logger          *slog.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store ProjectStore, objects ObjectStore, opts Options, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		store:           store,
		images:          newImages(objects, opts, logger),
		releaseOnDelete: opts.ReleaseImageOnDelete,
		metrics:         metrics.OrNoop(opts.Metrics),
		logger:          logger,
	}
}

// List returns every project in id order.
func (s *ProjectService) List(ctx context.Context) ([]*model.Project, error) {
	out, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// Get returns one project.
func (s *ProjectService) Get(ctx context.Context, id int64) (*model.Project, error) {
	p, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return p, nil
}

// Create stores a project. An image is required.
func (s *ProjectService) Create(ctx context.Context, in model.ProjectInput, img *Upload) (*model.Project, error) {
	in, err := validateProject(in)
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

	p, err := s.store.CreateProject(ctx, in, key)
	if err != nil {
		s.images.release(ctx, key, "create_failed")
		return nil, fmt.Errorf("create project: %w", mapStoreError(err))
	}

	s.metrics.IncRecordWritten(metrics.KindProject, metrics.OpCreate)
	s.logger.Info("project_created", slog.Int64("id", p.ID), slog.String("image_key", key))
	return p, nil
}

// Update rewrites a project. echoedKey is the image key the edit form
// carried; the stored key is authoritative.
func (s *ProjectService) Update(ctx context.Context, id int64, in model.ProjectInput, img *Upload, echoedKey string) (*model.Project, error) {
	in, err := validateProject(in)
	if err != nil {
		return nil, err
	}

	key, err := s.images.upload(ctx, img)
	if err != nil {
		return nil, err
	}

	p, prev, err := s.store.UpdateProject(ctx, id, in, keyPtr(key))
	if err != nil {
		s.images.release(ctx, key, "update_failed")
		return nil, mapStoreError(err)
	}
	s.images.checkEcho(echoedKey, prev)
	s.images.replaced(ctx, prev, key)

	s.metrics.IncRecordWritten(metrics.KindProject, metrics.OpUpdate)
	s.logger.Info("project_updated", slog.Int64("id", p.ID), slog.Bool("image_replaced", key != ""))
	return p, nil
}

// Delete removes a project row.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	key, err := s.store.DeleteProject(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if s.releaseOnDelete {
		s.images.release(ctx, key, "deleted")
	}
	s.metrics.IncRecordWritten(metrics.KindProject, metrics.OpDelete)
	s.logger.Info("project_deleted", slog.Int64("id", id))
	return nil
}

func validateProject(in model.ProjectInput) (model.ProjectInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.RepositoryURL = strings.TrimSpace(in.RepositoryURL)
	if in.Name == "" {
		return in, missing("name")
	}
	if in.RepositoryURL != "" {
		u, err := url.Parse(in.RepositoryURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return in, invalid("repository_url")
		}
	}
	return in, nil
}
