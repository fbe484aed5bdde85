package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type notificationDTO struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	PostID    *string   `json:"post_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationDTO(n *domain.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		PostID:    n.PostID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// ListNotifications returns the caller's notifications, newest first.
func (a *App) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	items, err := a.Notifications.ListByRecipient(r.Context(), a.currentUserID(r), limit, offset)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]notificationDTO, 0, len(items))
	for i := range items {
		out = append(out, toNotificationDTO(&items[i]))
	}
	a.json(w, http.StatusOK, out)
}

// MarkNotificationRead flags one of the caller's notifications as read.
func (a *App) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := a.Notifications.MarkRead(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r)); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
