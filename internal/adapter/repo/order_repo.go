package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// OrderRepositoryPG implements domain.OrderRepository.
type OrderRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new order repository backed by PostgreSQL.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepositoryPG {
	return &OrderRepositoryPG{pool: pool}
}

// Create inserts the order with its items and decrements product stock, all
// in one transaction. A line whose product lacks stock aborts the whole
// order with ErrOutOfStock.
func (r *OrderRepositoryPG) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO orders (id, user_id, status, total_cents)
VALUES ($1, $2, $3, $4);
`, order.ID, order.UserID, order.Status, order.TotalCents); err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		tag, err := tx.Exec(ctx, `
UPDATE products
SET stock = stock - $2,
    updated_at = NOW()
WHERE id = $1
  AND stock >= $2;
`, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrOutOfStock
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (id, order_id, product_id, name, price_cents, quantity)
VALUES ($1, $2, $3, $4, $5, $6);
`, item.ID, order.ID, item.ProductID, item.Name, item.PriceCents, item.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID fetches an order and its items.
func (r *OrderRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, user_id, status, total_cents, created_at FROM orders WHERE id = $1;
`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	items, err := r.itemsFor(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// ListByUser returns the user's orders, newest first, items included.
func (r *OrderRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, status, total_cents, created_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// UpdateStatus sets the order status.
func (r *OrderRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepositoryPG) itemsFor(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, order_id, product_id, name, price_cents, quantity
FROM order_items
WHERE order_id = $1;
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.PriceCents, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}
