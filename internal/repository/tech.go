package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foliocms/folio/internal/model"
)

const techColumns = `id, name, image_key, created_at, updated_at`

func scanTech(row pgx.Row, extra ...any) (*model.Tech, error) {
	var t model.Tech
	dest := append([]any{&t.ID, &t.Name, &t.ImageKey, &t.CreatedAt, &t.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTech returns every tech ordered by id.
func (r *Repository) ListTech(ctx context.Context) ([]*model.Tech, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+techColumns+` FROM tech ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tech: %w", err)
	}
	defer rows.Close()

	var out []*model.Tech
	for rows.Next() {
		t, err := scanTech(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tech: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tech: %w", err)
	}
	return out, nil
}

// CreateTech inserts a tech row.
func (r *Repository) CreateTech(ctx context.Context, in model.TechInput, imageKey string) (*model.Tech, error) {
	query := `
		INSERT INTO tech (name, image_key)
		VALUES ($1, $2)
		RETURNING ` + techColumns

	t, err := scanTech(r.pool.QueryRow(ctx, query, in.Name, imageKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create tech: %w", err)
	}
	return t, nil
}

// GetTechByID retrieves a tech by id.
func (r *Repository) GetTechByID(ctx context.Context, id int64) (*model.Tech, error) {
	t, err := scanTech(r.pool.QueryRow(ctx, `SELECT `+techColumns+` FROM tech WHERE id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tech by ID: %w", err)
	}
	return t, nil
}

// UpdateTech rewrites a tech and returns it with the image key it replaced.
// A nil imageKey keeps the stored one.
func (r *Repository) UpdateTech(ctx context.Context, id int64, in model.TechInput, imageKey *string) (*model.Tech, string, error) {
	query := `
		UPDATE tech AS t
		SET name = $2,
		    image_key = COALESCE($3::text, t.image_key),
		    updated_at = NOW()
		FROM (SELECT id, image_key FROM tech WHERE id = $1 FOR UPDATE) AS prev
		WHERE t.id = prev.id
		RETURNING t.id, t.name, t.image_key, t.created_at, t.updated_at, prev.image_key
	`

	var prev *string
	t, err := scanTech(r.pool.QueryRow(ctx, query, id, in.Name, imageKey), &prev)
	if err != nil {
		if notFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to update tech: %w", err)
	}
	return t, derefKey(prev), nil
}

// DeleteTech removes a tech and returns the image key it held.
func (r *Repository) DeleteTech(ctx context.Context, id int64) (string, error) {
	var key *string
	err := r.pool.QueryRow(ctx, `DELETE FROM tech WHERE id = $1 RETURNING image_key`, id).Scan(&key)
	if err != nil {
		if notFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to delete tech: %w", err)
	}
	return derefKey(key), nil
}
