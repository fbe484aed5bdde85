package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// ProductRepositoryPG implements domain.ProductRepository.
type ProductRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new product repository backed by PostgreSQL.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepositoryPG {
	return &ProductRepositoryPG{pool: pool}
}

const productColumns = `id, name, description, category, price_cents, stock, image_url, created_at, updated_at`

// Create inserts a new product.
func (r *ProductRepositoryPG) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO products (id, name, description, category, price_cents, stock, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`, p.ID, p.Name, p.Description, p.Category, p.PriceCents, p.Stock, p.ImageURL)
	return err
}

// GetByID fetches a product by id.
func (r *ProductRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// GetMany fetches the products with the given ids.
func (r *ProductRepositoryPG) GetMany(ctx context.Context, ids []string) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// List returns products, newest first.
func (r *ProductRepositoryPG) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+productColumns+`
FROM products
ORDER BY created_at DESC
LIMIT $1 OFFSET $2;
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// Update rewrites product fields.
func (r *ProductRepositoryPG) Update(ctx context.Context, p *domain.Product) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE products
SET name = $2,
    description = $3,
    category = $4,
    price_cents = $5,
    stock = $6,
    image_url = $7,
    updated_at = NOW()
WHERE id = $1;
`, p.ID, p.Name, p.Description, p.Category, p.PriceCents, p.Stock, p.ImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	var items []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.PriceCents, &p.Stock,
		&p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
