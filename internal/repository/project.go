package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foliocms/folio/internal/model"
)

const projectColumns = `id, name, description, tech_tags, image_key, repository_url, created_at, updated_at`

func scanProject(row pgx.Row, extra ...any) (*model.Project, error) {
	var p model.Project
	dest := append([]any{
		&p.ID,
		&p.Name,
		&p.Description,
		&p.TechTags,
		&p.ImageKey,
		&p.RepositoryURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns every project ordered by id.
func (r *Repository) ListProjects(ctx context.Context) ([]*model.Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return out, nil
}

// CreateProject inserts a project row.
func (r *Repository) CreateProject(ctx context.Context, in model.ProjectInput, imageKey string) (*model.Project, error) {
	query := `
		INSERT INTO projects (name, description, tech_tags, image_key, repository_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + projectColumns

	p, err := scanProject(r.pool.QueryRow(ctx, query,
		in.Name,
		in.Description,
		nonNil(in.TechTags),
		imageKey,
		in.RepositoryURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// GetProjectByID retrieves a project by id.
func (r *Repository) GetProjectByID(ctx context.Context, id int64) (*model.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project by ID: %w", err)
	}
	return p, nil
}

// UpdateProject rewrites a project and returns it with the image key it
// replaced. A nil imageKey keeps the stored one.
func (r *Repository) UpdateProject(ctx context.Context, id int64, in model.ProjectInput, imageKey *string) (*model.Project, string, error) {
	query := `
		UPDATE projects AS p
		SET name = $2,
		    description = $3,
		    tech_tags = $4,
		    repository_url = $5,
		    image_key = COALESCE($6::text, p.image_key),
		    updated_at = NOW()
		FROM (SELECT id, image_key FROM projects WHERE id = $1 FOR UPDATE) AS prev
		WHERE p.id = prev.id
		RETURNING p.id, p.name, p.description, p.tech_tags, p.image_key, p.repository_url,
		          p.created_at, p.updated_at, prev.image_key
	`

	var prev *string
	p, err := scanProject(r.pool.QueryRow(ctx, query,
		id,
		in.Name,
		in.Description,
		nonNil(in.TechTags),
		in.RepositoryURL,
		imageKey,
	), &prev)
	if err != nil {
		if notFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to update project: %w", err)
	}
	return p, derefKey(prev), nil
}

// DeleteProject removes a project and returns the image key it held.
func (r *Repository) DeleteProject(ctx context.Context, id int64) (string, error) {
	var key *string
	err := r.pool.QueryRow(ctx, `DELETE FROM projects WHERE id = $1 RETURNING image_key`, id).Scan(&key)
	if err != nil {
		if notFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to delete project: %w", err)
	}
	return derefKey(key), nil
}
