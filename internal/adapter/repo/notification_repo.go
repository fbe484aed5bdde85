package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// NotificationRepositoryPG implements domain.NotificationRepository.
type NotificationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository backed by PostgreSQL.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepositoryPG {
	return &NotificationRepositoryPG{pool: pool}
}

// CreateMany inserts one row per notification in a single batched
// transaction. A nil or empty slice is a no-op.
func (r *NotificationRepositoryPG) CreateMany(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, n := range notifications {
		batch.Queue(`
INSERT INTO notifications (id, recipient_id, type, message, post_id)
VALUES ($1, $2, $3, $4, $5);
`, n.ID, n.RecipientID, n.Type, n.Message, n.PostID)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results := tx.SendBatch(ctx, batch)
	for range notifications {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	if err := results.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListByRecipient returns a user's notifications, newest first.
func (r *NotificationRepositoryPG) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, recipient_id, type, message, post_id, is_read, created_at
FROM notifications
WHERE recipient_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3;
`, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.PostID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// MarkRead flags a notification as read. Recipients can only touch their
// own rows.
func (r *NotificationRepositoryPG) MarkRead(ctx context.Context, id, recipientID string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2;
`, id, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PurgeReadBefore deletes read notifications created before the cutoff.
func (r *NotificationRepositoryPG) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
DELETE FROM notifications WHERE is_read AND created_at < $1;
`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
