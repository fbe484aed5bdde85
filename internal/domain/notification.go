package domain

import "time"

// NotificationType tags the event that produced a notification row.
type NotificationType string

const (
	NotificationNewPostInArea     NotificationType = "new_post_in_area"
	NotificationNewComment        NotificationType = "new_comment"
	NotificationNewAdoptionForm   NotificationType = "new_adoption_form"
	NotificationAdoptionAccepted  NotificationType = "adoption_accepted"
	NotificationCaregiverSelected NotificationType = "caregiver_selected"
)

// Notification is one row per (recipient, event). Fan-out writes a row per
// recipient; there is no delivery or retry machinery, reading is pull-based.
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Message     string
	PostID      *string
	IsRead      bool
	CreatedAt   time.Time
}
