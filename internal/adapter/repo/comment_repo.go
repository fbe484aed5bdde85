package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// CommentRepositoryPG implements domain.CommentRepository.
type CommentRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new comment repository backed by PostgreSQL.
func NewCommentRepository(pool *pgxpool.Pool) *CommentRepositoryPG {
	return &CommentRepositoryPG{pool: pool}
}

// Create inserts a new comment.
func (r *CommentRepositoryPG) Create(ctx context.Context, comment *domain.Comment) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO comments (id, post_kind, post_id, author_id, body)
VALUES ($1, $2, $3, $4, $5);
`, comment.ID, comment.PostKind, comment.PostID, comment.AuthorID, comment.Body)
	return err
}

// GetByID fetches a comment by id.
func (r *CommentRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	row := r.pool.QueryRow(ctx, `
SELECT c.id, c.post_kind, c.post_id, c.author_id, u.name, c.body, c.created_at
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.id = $1;
`, id)
	return scanComment(row)
}

// ListByPost returns the comments of a post, oldest first.
func (r *CommentRepositoryPG) ListByPost(ctx context.Context, kind domain.PostKind, postID string) ([]domain.Comment, error) {
	rows, err := r.pool.Query(ctx, `
SELECT c.id, c.post_kind, c.post_id, c.author_id, u.name, c.body, c.created_at
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.post_kind = $1
  AND c.post_id = $2
ORDER BY c.created_at ASC;
`, kind, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Delete removes a comment.
func (r *CommentRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.PostKind, &c.PostID, &c.AuthorID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
