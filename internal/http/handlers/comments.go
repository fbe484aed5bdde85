package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
)

type commentCreateRequest struct {
	Body string `json:"body"`
}

type commentDTO struct {
	ID         string    `json:"id"`
	PostKind   string    `json:"post_kind"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCommentDTO(c *domain.Comment) commentDTO {
	return commentDTO{
		ID:         c.ID,
		PostKind:   string(c.PostKind),
		PostID:     c.PostID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
}

// postOwner resolves the owner id and title of the target post, verifying
// it exists.
func (a *App) postOwner(r *http.Request, kind domain.PostKind, postID string) (ownerID, title string, err error) {
	switch kind {
	case domain.PostKindDonation:
		post, err := a.Donations.GetByID(r.Context(), postID)
		if err != nil {
			return "", "", err
		}
		return post.OwnerID, post.Title, nil
	case domain.PostKindMissing:
		post, err := a.Missing.GetByID(r.Context(), postID)
		if err != nil {
			return "", "", err
		}
		return post.OwnerID, post.Title, nil
	}
	return "", "", domain.ErrNotFound
}

func commentKind(r *http.Request) (domain.PostKind, bool) {
	kind := domain.PostKind(chi.URLParam(r, "kind"))
	switch kind {
	case domain.PostKindDonation, domain.PostKindMissing:
		return kind, true
	}
	return "", false
}

// CreateComment attaches a comment to a donation or missing post and
// notifies the post owner.
func (a *App) CreateComment(w http.ResponseWriter, r *http.Request) {
	kind, ok := commentKind(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown post kind")
		return
	}
	postID := chi.URLParam(r, "id")

	ownerID, title, err := a.postOwner(r, kind, postID)
	if err != nil {
		a.domainError(w, err)
		return
	}

	var req commentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "comment body is required")
		return
	}

	comment := &domain.Comment{
		ID:       uuid.NewString(),
		PostKind: kind,
		PostID:   postID,
		AuthorID: a.currentUserID(r),
		Body:     strings.TrimSpace(req.Body),
	}
	if err := a.Comments.Create(r.Context(), comment); err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Notifier.CommentAdded(r.Context(), ownerID, title, comment); err != nil {
		a.Logger.Error().Err(err).Str("comment_id", comment.ID).Msg("comment notification failed")
	}
	a.json(w, http.StatusCreated, toCommentDTO(comment))
}

// ListComments returns the comments on a post, oldest first.
func (a *App) ListComments(w http.ResponseWriter, r *http.Request) {
	kind, ok := commentKind(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown post kind")
		return
	}
	comments, err := a.Comments.ListByPost(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]commentDTO, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentDTO(&comments[i]))
	}
	a.json(w, http.StatusOK, out)
}

// DeleteComment removes a comment. Author only.
func (a *App) DeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, err := a.Comments.GetByID(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if comment.AuthorID != a.currentUserID(r) {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	if err := a.Comments.Delete(r.Context(), comment.ID); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
