package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foliocms/folio/internal/model"
)

const experienceColumns = `id, department, company, job_titles, tech_tags, start_date, end_date, image_key, created_at, updated_at`

func scanExperience(row pgx.Row, extra ...any) (*model.Experience, error) {
	var e model.Experience
	dest := append([]any{
		&e.ID,
		&e.Department,
		&e.Company,
		&e.JobTitles,
		&e.TechTags,
		&e.StartDate,
		&e.EndDate,
		&e.ImageKey,
		&e.CreatedAt,
		&e.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListExperiences returns every experience ordered by id.
func (r *Repository) ListExperiences(ctx context.Context) ([]*model.Experience, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+experienceColumns+` FROM experiences ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiences: %w", err)
	}
	defer rows.Close()

	var out []*model.Experience
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate experiences: %w", err)
	}
	return out, nil
}

// CreateExperience inserts an experience row.
func (r *Repository) CreateExperience(ctx context.Context, in model.ExperienceInput, imageKey string) (*model.Experience, error) {
	query := `
		INSERT INTO experiences (department, company, job_titles, tech_tags, start_date, end_date, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + experienceColumns

	e, err := scanExperience(r.pool.QueryRow(ctx, query,
		in.Department,
		in.Company,
		nonNil(in.JobTitles),
		nonNil(in.TechTags),
		in.StartDate,
		in.EndDate,
		imageKey,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create experience: %w", err)
	}
	return e, nil
}

// GetExperienceByID retrieves an experience by id.
func (r *Repository) GetExperienceByID(ctx context.Context, id int64) (*model.Experience, error) {
	e, err := scanExperience(r.pool.QueryRow(ctx, `SELECT `+experienceColumns+` FROM experiences WHERE id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get experience by ID: %w", err)
	}
	return e, nil
}

// UpdateExperience rewrites an experience and returns it with the image key
// it replaced. A nil imageKey keeps the stored one.
func (r *Repository) UpdateExperience(ctx context.Context, id int64, in model.ExperienceInput, imageKey *string) (*model.Experience, string, error) {
	query := `
		UPDATE experiences AS e
		SET department = $2,
		    company = $3,
		    job_titles = $4,
		    tech_tags = $5,
		    start_date = $6,
		    end_date = $7,
		    image_key = COALESCE($8::text, e.image_key),
		    updated_at = NOW()
		FROM (SELECT id, image_key FROM experiences WHERE id = $1 FOR UPDATE) AS prev
		WHERE e.id = prev.id
		RETURNING e.id, e.department, e.company, e.job_titles, e.tech_tags, e.start_date, e.end_date,
		          e.image_key, e.created_at, e.updated_at, prev.image_key
	`

	var prev *string
	e, err := scanExperience(r.pool.QueryRow(ctx, query,
		id,
		in.Department,
		in.Company,
		nonNil(in.JobTitles),
		nonNil(in.TechTags),
		in.StartDate,
		in.EndDate,
		imageKey,
	), &prev)
	if err != nil {
		if notFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to update experience: %w", err)
	}
	return e, derefKey(prev), nil
}

// DeleteExperience removes an experience and returns the image key it held.
func (r *Repository) DeleteExperience(ctx context.Context, id int64) (string, error) {
	var key *string
	err := r.pool.QueryRow(ctx, `DELETE FROM experiences WHERE id = $1 RETURNING image_key`, id).Scan(&key)
	if err != nil {
		if notFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to delete experience: %w", err)
	}
	return derefKey(key), nil
}
