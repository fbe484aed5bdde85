package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

const userColumns = `id, email, password_hash, name, phone, country, city, area, role, created_at, updated_at`

// Create inserts a new user. Location fields are stored normalized.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	loc := user.Location.Normalize()
	_, err := r.pool.Exec(ctx, `
INSERT INTO users (id, email, password_hash, name, phone, country, city, area, role)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`, user.ID, user.Email, user.PasswordHash, user.Name, user.Phone, loc.Country, loc.City, loc.Area, user.Role)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email address.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateProfile updates mutable profile fields.
func (r *UserRepositoryPG) UpdateProfile(ctx context.Context, user *domain.User) error {
	loc := user.Location.Normalize()
	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET name = $2,
    phone = $3,
    country = $4,
    city = $5,
    area = $6,
    updated_at = NOW()
WHERE id = $1;
`, user.ID, user.Name, user.Phone, loc.Country, loc.City, loc.Area)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListIDsByArea returns ids of users in the normalized (city, area),
// excluding excludeID.
func (r *UserRepositoryPG) ListIDsByArea(ctx context.Context, city, area, excludeID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id
FROM users
WHERE city = $1
  AND area = $2
  AND id <> $3;
`, domain.NormalizeLocationValue(city), domain.NormalizeLocationValue(area), excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone,
		&u.Location.Country, &u.Location.City, &u.Location.Area, &u.Role,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
