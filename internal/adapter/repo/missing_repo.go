package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// MissingRepositoryPG implements domain.MissingRepository.
type MissingRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewMissingRepository creates a new missing-post repository backed by PostgreSQL.
func NewMissingRepository(pool *pgxpool.Pool) *MissingRepositoryPG {
	return &MissingRepositoryPG{pool: pool}
}

const missingColumns = `id, owner_id, title, description, pet_name, species, image_url, image_key,
country, city, area, last_seen_at, is_found, created_at, updated_at`

// Create inserts a new missing-pet report with normalized location.
func (r *MissingRepositoryPG) Create(ctx context.Context, post *domain.MissingPost) error {
	loc := post.Location.Normalize()
	post.Location = loc
	_, err := r.pool.Exec(ctx, `
INSERT INTO missing_posts (id, owner_id, title, description, pet_name, species, image_url, image_key,
                           country, city, area, last_seen_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`, post.ID, post.OwnerID, post.Title, post.Description, post.PetName, post.Species,
		post.ImageURL, post.ImageKey, loc.Country, loc.City, loc.Area, post.LastSeenAt)
	return err
}

// GetByID fetches a report by id.
func (r *MissingRepositoryPG) GetByID(ctx context.Context, id string) (*domain.MissingPost, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+missingColumns+` FROM missing_posts WHERE id = $1`, id)
	return scanMissingPost(row)
}

// List returns reports, newest first.
func (r *MissingRepositoryPG) List(ctx context.Context, limit, offset int) ([]domain.MissingPost, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+missingColumns+`
FROM missing_posts
ORDER BY created_at DESC
LIMIT $1 OFFSET $2;
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MissingPost
	for rows.Next() {
		post, err := scanMissingPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *post)
	}
	return items, rows.Err()
}

// Update rewrites mutable fields, including the found flag.
func (r *MissingRepositoryPG) Update(ctx context.Context, post *domain.MissingPost) error {
	loc := post.Location.Normalize()
	tag, err := r.pool.Exec(ctx, `
UPDATE missing_posts
SET title = $2,
    description = $3,
    pet_name = $4,
    species = $5,
    country = $6,
    city = $7,
    area = $8,
    last_seen_at = $9,
    is_found = $10,
    updated_at = NOW()
WHERE id = $1;
`, post.ID, post.Title, post.Description, post.PetName, post.Species,
		loc.Country, loc.City, loc.Area, post.LastSeenAt, post.IsFound)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the report and its comments in one transaction.
func (r *MissingRepositoryPG) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_kind = 'missing' AND post_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM missing_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit(ctx)
}

func scanMissingPost(row pgx.Row) (*domain.MissingPost, error) {
	var p domain.MissingPost
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.PetName, &p.Species,
		&p.ImageURL, &p.ImageKey, &p.Location.Country, &p.Location.City, &p.Location.Area,
		&p.LastSeenAt, &p.IsFound, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
