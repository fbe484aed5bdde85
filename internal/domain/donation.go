package domain

import (
	"fmt"
	"time"
)

// DonationPost is a pet listing offered for adoption.
type DonationPost struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	PetName      string
	Species      string
	Breed        string
	AgeMonths    int
	ImageURL     string
	ImageKey     string
	Location     Location
	IsAvailable  bool
	UpvotesCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AdoptionFormStatus enumerates adoption application states.
type AdoptionFormStatus string

const (
	AdoptionPending  AdoptionFormStatus = "PENDING"
	AdoptionAccepted AdoptionFormStatus = "ACCEPTED"
	AdoptionRejected AdoptionFormStatus = "REJECTED"
)

// ParseAdoptionFormStatus converts a raw string to an AdoptionFormStatus.
func ParseAdoptionFormStatus(s string) (AdoptionFormStatus, error) {
	st := AdoptionFormStatus(s)
	switch st {
	case AdoptionPending, AdoptionAccepted, AdoptionRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown adoption form status %q", s)
}

// AdoptionForm is one user's application to adopt a donation post.
// At most one form exists per (user, post) pair, and at most one form per
// post ever reaches ACCEPTED.
type AdoptionForm struct {
	ID             string
	DonationPostID string
	ApplicantID    string
	Description    string
	MeetingAt      time.Time
	Status         AdoptionFormStatus
	CreatedAt      time.Time
}

// Upvote joins a user to a donation post. Unique per pair; created and
// destroyed atomically with the post counter.
type Upvote struct {
	ID             string
	DonationPostID string
	UserID         string
	CreatedAt      time.Time
}
