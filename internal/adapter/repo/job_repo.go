package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository.
//
// Status transitions are guarded by conditional updates on the current
// status column, so a concurrent caller racing on the same transition loses
// with ErrInvalidTransition and the transaction rolls back.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

const jobColumns = `id, owner_id, title, description, tags, country, city, area,
price_low, price_high, start_date, end_date, status, selected_caregiver_id, created_at, updated_at`

// Create inserts a new OPEN job post.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.JobPost) error {
	loc := job.Location.Normalize()
	job.Location = loc
	job.Status = domain.JobOpen
	_, err := r.pool.Exec(ctx, `
INSERT INTO job_posts (id, owner_id, title, description, tags, country, city, area,
                       price_low, price_high, start_date, end_date, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`, job.ID, job.OwnerID, job.Title, job.Description, job.Tags, loc.Country, loc.City, loc.Area,
		job.PriceLow, job.PriceHigh, job.StartDate, job.EndDate, job.Status)
	return err
}

// GetByID fetches a job post by id.
func (r *JobRepositoryPG) GetByID(ctx context.Context, id string) (*domain.JobPost, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM job_posts WHERE id = $1`, id)
	return scanJobPost(row)
}

// ListOpen returns OPEN jobs, newest first.
func (r *JobRepositoryPG) ListOpen(ctx context.Context, limit, offset int) ([]domain.JobPost, error) {
	return r.list(ctx, `
SELECT `+jobColumns+`
FROM job_posts
WHERE status = 'OPEN'
ORDER BY created_at DESC
LIMIT $1 OFFSET $2;
`, limit, offset)
}

// ListByOwner returns every job the user posted, newest first.
func (r *JobRepositoryPG) ListByOwner(ctx context.Context, ownerID string) ([]domain.JobPost, error) {
	return r.list(ctx, `
SELECT `+jobColumns+`
FROM job_posts
WHERE owner_id = $1
ORDER BY created_at DESC;
`, ownerID)
}

// Delete removes an OPEN job and its applications.
func (r *JobRepositoryPG) Delete(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE job_post_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM job_posts WHERE id = $1 AND status = 'OPEN'`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			// Either the job does not exist or it already left OPEN.
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM job_posts WHERE id = $1)`, id).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return domain.ErrInvalidTransition
			}
			return domain.ErrNotFound
		}
		return nil
	})
}

const applicationColumns = `id, job_post_id, caregiver_id, proposal, amount, status, created_at`

// Apply inserts a PENDING application on an OPEN job.
func (r *JobRepositoryPG) Apply(ctx context.Context, app *domain.Application) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var status domain.JobStatus
		err := tx.QueryRow(ctx, `SELECT status FROM job_posts WHERE id = $1 FOR SHARE`, app.JobPostID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if status != domain.JobOpen {
			return domain.ErrInvalidTransition
		}

		app.Status = domain.ApplicationPending
		_, err = tx.Exec(ctx, `
INSERT INTO applications (id, job_post_id, caregiver_id, proposal, amount, status)
VALUES ($1, $2, $3, $4, $5, $6);
`, app.ID, app.JobPostID, app.CaregiverID, app.Proposal, app.Amount, app.Status)
		if isUniqueViolation(err) {
			return domain.ErrAlreadyApplied
		}
		return err
	})
}

// GetApplication fetches an application by id.
func (r *JobRepositoryPG) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

// ListApplications returns every application on a job, oldest first.
func (r *JobRepositoryPG) ListApplications(ctx context.Context, jobID string) ([]domain.Application, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+applicationColumns+`
FROM applications
WHERE job_post_id = $1
ORDER BY created_at ASC;
`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *app)
	}
	return items, rows.Err()
}

// SelectCaregiver moves an OPEN job to ONGOING, accepting one application
// and rejecting the rest in the same transaction.
func (r *JobRepositoryPG) SelectCaregiver(ctx context.Context, jobID, applicationID string) (*domain.Application, error) {
	var accepted *domain.Application
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		app, err := scanApplication(tx.QueryRow(ctx,
			`SELECT `+applicationColumns+` FROM applications WHERE id = $1 AND job_post_id = $2 FOR UPDATE`,
			applicationID, jobID))
		if err != nil {
			return err
		}
		if app.Status != domain.ApplicationPending {
			return domain.ErrInvalidTransition
		}

		tag, err := tx.Exec(ctx, `
UPDATE job_posts
SET status = $3,
    selected_caregiver_id = $2,
    updated_at = NOW()
WHERE id = $1
  AND status = $4;
`, jobID, app.CaregiverID, domain.JobOngoing, domain.JobOpen)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrInvalidTransition
		}

		if _, err := tx.Exec(ctx, `
UPDATE applications SET status = $2 WHERE id = $1;
`, app.ID, domain.ApplicationAccepted); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
UPDATE applications
SET status = $3
WHERE job_post_id = $1
  AND id <> $2;
`, jobID, app.ID, domain.ApplicationRejected); err != nil {
			return err
		}

		app.Status = domain.ApplicationAccepted
		accepted = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// EndJob moves an ONGOING job to CLOSED, inserting the optional review in
// the same transaction.
func (r *JobRepositoryPG) EndJob(ctx context.Context, jobID string, review *domain.Review) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var caregiverID *string
		err := tx.QueryRow(ctx, `
UPDATE job_posts
SET status = $2,
    updated_at = NOW()
WHERE id = $1
  AND status = $3
RETURNING selected_caregiver_id;
`, jobID, domain.JobClosed, domain.JobOngoing).Scan(&caregiverID)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrInvalidTransition
		}
		if err != nil {
			return err
		}

		if review == nil {
			return nil
		}
		if caregiverID == nil {
			return domain.ErrInvalidTransition
		}
		if review.ID == "" {
			review.ID = uuid.NewString()
		}
		review.JobPostID = jobID
		review.CaregiverID = *caregiverID
		_, err = tx.Exec(ctx, `
INSERT INTO reviews (id, job_post_id, caregiver_id, reviewer_id, rating, body)
VALUES ($1, $2, $3, $4, $5, $6);
`, review.ID, review.JobPostID, review.CaregiverID, review.ReviewerID, review.Rating, review.Body)
		if isUniqueViolation(err) {
			return domain.ErrDuplicateOperation
		}
		return err
	})
}

// Cancel moves an OPEN job directly to CLOSED without a caregiver.
func (r *JobRepositoryPG) Cancel(ctx context.Context, jobID string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE job_posts
SET status = $2,
    updated_at = NOW()
WHERE id = $1
  AND status = $3;
`, jobID, domain.JobClosed, domain.JobOpen)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// CloseExpiredOpen closes OPEN jobs whose end date has passed.
func (r *JobRepositoryPG) CloseExpiredOpen(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE job_posts
SET status = $2,
    updated_at = NOW()
WHERE status = $3
  AND end_date < $1;
`, now, domain.JobClosed, domain.JobOpen)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *JobRepositoryPG) list(ctx context.Context, query string, args ...any) ([]domain.JobPost, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.JobPost
	for rows.Next() {
		job, err := scanJobPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *job)
	}
	return items, rows.Err()
}

func (r *JobRepositoryPG) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func scanJobPost(row pgx.Row) (*domain.JobPost, error) {
	var j domain.JobPost
	var status string
	if err := row.Scan(&j.ID, &j.OwnerID, &j.Title, &j.Description, &j.Tags,
		&j.Location.Country, &j.Location.City, &j.Location.Area,
		&j.PriceLow, &j.PriceHigh, &j.StartDate, &j.EndDate, &status,
		&j.SelectedCaregiverID, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	st, err := domain.ParseJobStatus(status)
	if err != nil {
		return nil, err
	}
	j.Status = st
	return &j, nil
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	if err := row.Scan(&a.ID, &a.JobPostID, &a.CaregiverID, &a.Proposal, &a.Amount, &a.Status, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
