// Package notify writes notification rows for domain events. Fan-out is a
// plain insert per recipient; delivery is pull-based through the
// notifications endpoint.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"server/internal/domain"
)

// Notifier resolves recipients and writes notification rows.
type Notifier struct {
	users         domain.UserRepository
	notifications domain.NotificationRepository
}

// New creates a Notifier.
func New(users domain.UserRepository, notifications domain.NotificationRepository) *Notifier {
	return &Notifier{users: users, notifications: notifications}
}

// DonationPostCreated notifies every user in the post's normalized
// (city, area), excluding the author.
func (n *Notifier) DonationPostCreated(ctx context.Context, post *domain.DonationPost) error {
	recipients, err := n.users.ListIDsByArea(ctx, post.Location.City, post.Location.Area, post.OwnerID)
	if err != nil {
		return fmt.Errorf("notify: resolve area recipients: %w", err)
	}
	msg := fmt.Sprintf("A new pet %q is up for adoption in your area", post.Title)
	return n.fanOut(ctx, recipients, domain.NotificationNewPostInArea, msg, &post.ID)
}

// CommentAdded notifies the post owner about a new comment, unless they
// wrote it themselves.
func (n *Notifier) CommentAdded(ctx context.Context, ownerID, postTitle string, comment *domain.Comment) error {
	if ownerID == comment.AuthorID {
		return nil
	}
	msg := fmt.Sprintf("New comment on %q", postTitle)
	return n.fanOut(ctx, []string{ownerID}, domain.NotificationNewComment, msg, &comment.PostID)
}

// AdoptionFormSubmitted notifies the post owner about a new application.
func (n *Notifier) AdoptionFormSubmitted(ctx context.Context, post *domain.DonationPost) error {
	msg := fmt.Sprintf("Someone applied to adopt %q", post.Title)
	return n.fanOut(ctx, []string{post.OwnerID}, domain.NotificationNewAdoptionForm, msg, &post.ID)
}

// AdoptionAccepted notifies the applicant whose form was accepted.
func (n *Notifier) AdoptionAccepted(ctx context.Context, post *domain.DonationPost, form *domain.AdoptionForm) error {
	msg := fmt.Sprintf("Your adoption application for %q was accepted", post.Title)
	return n.fanOut(ctx, []string{form.ApplicantID}, domain.NotificationAdoptionAccepted, msg, &post.ID)
}

// CaregiverSelected notifies the caregiver chosen for a job.
func (n *Notifier) CaregiverSelected(ctx context.Context, job *domain.JobPost, caregiverUserID string) error {
	msg := fmt.Sprintf("You were selected for the job %q", job.Title)
	return n.fanOut(ctx, []string{caregiverUserID}, domain.NotificationCaregiverSelected, msg, &job.ID)
}

func (n *Notifier) fanOut(ctx context.Context, recipients []string, typ domain.NotificationType, msg string, postID *string) error {
	if len(recipients) == 0 {
		return nil
	}
	rows := make([]domain.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		rows = append(rows, domain.Notification{
			ID:          uuid.NewString(),
			RecipientID: recipient,
			Type:        typ,
			Message:     msg,
			PostID:      postID,
		})
	}
	if err := n.notifications.CreateMany(ctx, rows); err != nil {
		return fmt.Errorf("notify: write %s rows: %w", typ, err)
	}
	return nil
}
