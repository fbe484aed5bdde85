package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	// ListIDsByArea returns ids of users whose normalized (city, area)
	// matches, excluding excludeID. Used by notification fan-out.
	ListIDsByArea(ctx context.Context, city, area, excludeID string) ([]string, error)
}

// DonationRepository defines persistence for donation posts and the
// adoption workflow. The workflow methods are transactional: partial
// application of their effects is impossible.
type DonationRepository interface {
	Create(ctx context.Context, post *DonationPost) error
	GetByID(ctx context.Context, id string) (*DonationPost, error)
	List(ctx context.Context, limit, offset int) ([]DonationPost, error)
	Update(ctx context.Context, post *DonationPost) error
	// Delete removes upvotes, comments and adoption forms together with the
	// post in one transaction.
	Delete(ctx context.Context, id string) error

	// Upvote inserts the upvote row and increments the post counter
	// atomically. Returns ErrAlreadyUpvoted on a duplicate pair.
	Upvote(ctx context.Context, postID, userID string) error
	// RemoveUpvote deletes the upvote row and decrements the counter
	// atomically. Returns ErrNotUpvoted when no row exists.
	RemoveUpvote(ctx context.Context, postID, userID string) error
	CountUpvotes(ctx context.Context, postID string) (int, error)

	// SubmitAdoptionForm creates a PENDING form. Returns ErrAlreadyApplied
	// when the applicant already has a form for the post.
	SubmitAdoptionForm(ctx context.Context, form *AdoptionForm) error
	GetAdoptionForm(ctx context.Context, formID string) (*AdoptionForm, error)
	ListAdoptionForms(ctx context.Context, postID string) ([]AdoptionForm, error)
	// AcceptAdoptionForm marks the form ACCEPTED, every sibling REJECTED and
	// the post unavailable in one transaction. Returns ErrPostUnavailable
	// when the post has already been adopted.
	AcceptAdoptionForm(ctx context.Context, formID string) (*AdoptionForm, error)
}

// MissingRepository defines persistence for missing-pet reports.
type MissingRepository interface {
	Create(ctx context.Context, post *MissingPost) error
	GetByID(ctx context.Context, id string) (*MissingPost, error)
	List(ctx context.Context, limit, offset int) ([]MissingPost, error)
	Update(ctx context.Context, post *MissingPost) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository handles comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	ListByPost(ctx context.Context, kind PostKind, postID string) ([]Comment, error)
	Delete(ctx context.Context, id string) error
}

// JobRepository defines persistence for job posts and their lifecycle.
type JobRepository interface {
	Create(ctx context.Context, job *JobPost) error
	GetByID(ctx context.Context, id string) (*JobPost, error)
	ListOpen(ctx context.Context, limit, offset int) ([]JobPost, error)
	ListByOwner(ctx context.Context, ownerID string) ([]JobPost, error)
	// Delete removes an OPEN job and its applications. Returns
	// ErrInvalidTransition for any other status.
	Delete(ctx context.Context, id string) error

	// Apply inserts a PENDING application on an OPEN job. Returns
	// ErrAlreadyApplied on a duplicate (caregiver, post) pair,
	// ErrInvalidTransition when the job is not OPEN.
	Apply(ctx context.Context, app *Application) error
	GetApplication(ctx context.Context, id string) (*Application, error)
	ListApplications(ctx context.Context, jobID string) ([]Application, error)

	// SelectCaregiver moves an OPEN job to ONGOING, accepting the given
	// application and rejecting its siblings, all in one transaction.
	SelectCaregiver(ctx context.Context, jobID, applicationID string) (*Application, error)
	// EndJob moves an ONGOING job to CLOSED; when review is non-nil it is
	// inserted in the same transaction.
	EndJob(ctx context.Context, jobID string, review *Review) error
	// Cancel moves an OPEN job directly to CLOSED without a caregiver.
	Cancel(ctx context.Context, jobID string) error
	// CloseExpiredOpen closes OPEN jobs whose end date is before now and
	// returns how many were affected.
	CloseExpiredOpen(ctx context.Context, now time.Time) (int64, error)
}

// CaregiverRepository handles caregiver profiles.
type CaregiverRepository interface {
	Create(ctx context.Context, cg *Caregiver) error
	GetByID(ctx context.Context, id string) (*Caregiver, error)
	GetByUserID(ctx context.Context, userID string) (*Caregiver, error)
	ListByCity(ctx context.Context, city string, limit, offset int) ([]Caregiver, error)
}

// ProductRepository handles store products.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetMany(ctx context.Context, ids []string) ([]Product, error)
	List(ctx context.Context, limit, offset int) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository handles orders captured at checkout.
type OrderRepository interface {
	// Create inserts the order and its items in one transaction and
	// decrements product stock.
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
}

// NotificationRepository writes and reads notification rows.
type NotificationRepository interface {
	// CreateMany inserts one row per notification in a single transaction.
	CreateMany(ctx context.Context, notifications []Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	// PurgeReadBefore deletes read notifications created before the cutoff
	// and returns how many were removed.
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
