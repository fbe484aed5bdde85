package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// DonationRepositoryPG implements domain.DonationRepository.
//
// The workflow methods (Upvote, RemoveUpvote, AcceptAdoptionForm, Delete)
// run inside a single transaction so their effects are visible together or
// not at all.
type DonationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDonationRepository creates a new donation repository backed by PostgreSQL.
func NewDonationRepository(pool *pgxpool.Pool) *DonationRepositoryPG {
	return &DonationRepositoryPG{pool: pool}
}

const donationColumns = `id, owner_id, title, description, pet_name, species, breed, age_months,
image_url, image_key, country, city, area, is_available, upvotes_count, created_at, updated_at`

// Create inserts a new donation post with normalized location.
func (r *DonationRepositoryPG) Create(ctx context.Context, post *domain.DonationPost) error {
	loc := post.Location.Normalize()
	post.Location = loc
	_, err := r.pool.Exec(ctx, `
INSERT INTO donation_posts (id, owner_id, title, description, pet_name, species, breed, age_months,
                            image_url, image_key, country, city, area, is_available)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE);
`, post.ID, post.OwnerID, post.Title, post.Description, post.PetName, post.Species, post.Breed,
		post.AgeMonths, post.ImageURL, post.ImageKey, loc.Country, loc.City, loc.Area)
	return err
}

// GetByID fetches a donation post by its identifier.
func (r *DonationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.DonationPost, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+donationColumns+` FROM donation_posts WHERE id = $1`, id)
	return scanDonationPost(row)
}

// List returns donation posts, newest first.
func (r *DonationRepositoryPG) List(ctx context.Context, limit, offset int) ([]domain.DonationPost, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+donationColumns+`
FROM donation_posts
ORDER BY created_at DESC
LIMIT $1 OFFSET $2;
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.DonationPost
	for rows.Next() {
		post, err := scanDonationPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *post)
	}
	return items, rows.Err()
}

// Update rewrites the descriptive fields of a post.
func (r *DonationRepositoryPG) Update(ctx context.Context, post *domain.DonationPost) error {
	loc := post.Location.Normalize()
	tag, err := r.pool.Exec(ctx, `
UPDATE donation_posts
SET title = $2,
    description = $3,
    pet_name = $4,
    species = $5,
    breed = $6,
    age_months = $7,
    country = $8,
    city = $9,
    area = $10,
    updated_at = NOW()
WHERE id = $1;
`, post.ID, post.Title, post.Description, post.PetName, post.Species, post.Breed, post.AgeMonths,
		loc.Country, loc.City, loc.Area)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the post and all of its children (upvotes, comments,
// adoption forms) in one transaction, children first.
func (r *DonationRepositoryPG) Delete(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM upvotes WHERE donation_post_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_kind = 'donation' AND post_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM adoption_forms WHERE donation_post_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM donation_posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Upvote inserts the upvote row and increments the denormalized counter in
// one transaction, so the counter never drifts from the join-table truth.
func (r *DonationRepositoryPG) Upvote(ctx context.Context, postID, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO upvotes (id, donation_post_id, user_id)
VALUES (gen_random_uuid(), $1, $2);
`, postID, userID)
		if isUniqueViolation(err) {
			return domain.ErrAlreadyUpvoted
		}
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
UPDATE donation_posts SET upvotes_count = upvotes_count + 1 WHERE id = $1;
`, postID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// RemoveUpvote deletes the upvote row and decrements the counter atomically.
func (r *DonationRepositoryPG) RemoveUpvote(ctx context.Context, postID, userID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
DELETE FROM upvotes WHERE donation_post_id = $1 AND user_id = $2;
`, postID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotUpvoted
		}
		_, err = tx.Exec(ctx, `
UPDATE donation_posts SET upvotes_count = upvotes_count - 1 WHERE id = $1;
`, postID)
		return err
	})
}

// CountUpvotes returns the number of upvote rows for a post.
func (r *DonationRepositoryPG) CountUpvotes(ctx context.Context, postID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM upvotes WHERE donation_post_id = $1`, postID).Scan(&n)
	return n, err
}

const adoptionFormColumns = `id, donation_post_id, applicant_id, description, meeting_at, status, created_at`

// SubmitAdoptionForm creates a PENDING form for the applicant.
func (r *DonationRepositoryPG) SubmitAdoptionForm(ctx context.Context, form *domain.AdoptionForm) error {
	form.Status = domain.AdoptionPending
	_, err := r.pool.Exec(ctx, `
INSERT INTO adoption_forms (id, donation_post_id, applicant_id, description, meeting_at, status)
VALUES ($1, $2, $3, $4, $5, $6);
`, form.ID, form.DonationPostID, form.ApplicantID, form.Description, form.MeetingAt, form.Status)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyApplied
	}
	return err
}

// GetAdoptionForm fetches a form by id.
func (r *DonationRepositoryPG) GetAdoptionForm(ctx context.Context, formID string) (*domain.AdoptionForm, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+adoptionFormColumns+` FROM adoption_forms WHERE id = $1`, formID)
	return scanAdoptionForm(row)
}

// ListAdoptionForms returns every form submitted for a post, oldest first.
func (r *DonationRepositoryPG) ListAdoptionForms(ctx context.Context, postID string) ([]domain.AdoptionForm, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+adoptionFormColumns+`
FROM adoption_forms
WHERE donation_post_id = $1
ORDER BY created_at ASC;
`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AdoptionForm
	for rows.Next() {
		form, err := scanAdoptionForm(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *form)
	}
	return items, rows.Err()
}

// AcceptAdoptionForm accepts one form and rejects its siblings while
// flipping the post to unavailable, all in one transaction. The availability
// flip is conditional on is_available so a concurrent acceptance loses
// cleanly with ErrPostUnavailable.
func (r *DonationRepositoryPG) AcceptAdoptionForm(ctx context.Context, formID string) (*domain.AdoptionForm, error) {
	var accepted *domain.AdoptionForm
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		form, err := scanAdoptionForm(tx.QueryRow(ctx,
			`SELECT `+adoptionFormColumns+` FROM adoption_forms WHERE id = $1 FOR UPDATE`, formID))
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
UPDATE donation_posts
SET is_available = FALSE,
    updated_at = NOW()
WHERE id = $1
  AND is_available = TRUE;
`, form.DonationPostID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrPostUnavailable
		}

		if _, err := tx.Exec(ctx, `
UPDATE adoption_forms SET status = $2 WHERE id = $1;
`, form.ID, domain.AdoptionAccepted); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
UPDATE adoption_forms
SET status = $3
WHERE donation_post_id = $1
  AND id <> $2;
`, form.DonationPostID, form.ID, domain.AdoptionRejected); err != nil {
			return err
		}

		form.Status = domain.AdoptionAccepted
		accepted = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

func (r *DonationRepositoryPG) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func scanDonationPost(row pgx.Row) (*domain.DonationPost, error) {
	var p domain.DonationPost
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.PetName, &p.Species, &p.Breed,
		&p.AgeMonths, &p.ImageURL, &p.ImageKey, &p.Location.Country, &p.Location.City, &p.Location.Area,
		&p.IsAvailable, &p.UpvotesCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanAdoptionForm(row pgx.Row) (*domain.AdoptionForm, error) {
	var f domain.AdoptionForm
	var status string
	if err := row.Scan(&f.ID, &f.DonationPostID, &f.ApplicantID, &f.Description, &f.MeetingAt,
		&status, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	st, err := domain.ParseAdoptionFormStatus(status)
	if err != nil {
		return nil, err
	}
	f.Status = st
	return &f, nil
}
