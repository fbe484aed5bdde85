package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// CaregiverRepositoryPG implements domain.CaregiverRepository.
type CaregiverRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCaregiverRepository creates a new caregiver repository backed by PostgreSQL.
func NewCaregiverRepository(pool *pgxpool.Pool) *CaregiverRepositoryPG {
	return &CaregiverRepositoryPG{pool: pool}
}

const caregiverSelect = `
SELECT c.id, c.user_id, u.name, c.bio, c.hourly_rate, c.city, c.verified,
       COALESCE(AVG(r.rating), 0), COUNT(r.id), c.created_at
FROM caregivers c
JOIN users u ON u.id = c.user_id
LEFT JOIN reviews r ON r.caregiver_id = c.id
`

// Create inserts a caregiver profile. One profile per user.
func (r *CaregiverRepositoryPG) Create(ctx context.Context, cg *domain.Caregiver) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO caregivers (id, user_id, bio, hourly_rate, city)
VALUES ($1, $2, $3, $4, $5);
`, cg.ID, cg.UserID, cg.Bio, cg.HourlyRate, domain.NormalizeLocationValue(cg.City))
	if isUniqueViolation(err) {
		return domain.ErrDuplicateOperation
	}
	return err
}

// GetByID fetches a caregiver with aggregated review rating.
func (r *CaregiverRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Caregiver, error) {
	row := r.pool.QueryRow(ctx, caregiverSelect+`
WHERE c.id = $1
GROUP BY c.id, u.name;
`, id)
	return scanCaregiver(row)
}

// GetByUserID fetches the caregiver profile of a user.
func (r *CaregiverRepositoryPG) GetByUserID(ctx context.Context, userID string) (*domain.Caregiver, error) {
	row := r.pool.QueryRow(ctx, caregiverSelect+`
WHERE c.user_id = $1
GROUP BY c.id, u.name;
`, userID)
	return scanCaregiver(row)
}

// ListByCity returns caregivers in a city; an empty city lists everyone.
func (r *CaregiverRepositoryPG) ListByCity(ctx context.Context, city string, limit, offset int) ([]domain.Caregiver, error) {
	rows, err := r.pool.Query(ctx, caregiverSelect+`
WHERE ($1 = '' OR c.city = $1)
GROUP BY c.id, u.name
ORDER BY c.created_at DESC
LIMIT $2 OFFSET $3;
`, domain.NormalizeLocationValue(city), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Caregiver
	for rows.Next() {
		cg, err := scanCaregiver(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *cg)
	}
	return items, rows.Err()
}

func scanCaregiver(row pgx.Row) (*domain.Caregiver, error) {
	var c domain.Caregiver
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Bio, &c.HourlyRate, &c.City, &c.Verified,
		&c.RatingAvg, &c.RatingCount, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
