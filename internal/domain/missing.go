package domain

import "time"

// MissingPost reports a lost pet.
type MissingPost struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	PetName     string
	Species     string
	ImageURL    string
	ImageKey    string
	Location    Location
	LastSeenAt  time.Time
	IsFound     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
