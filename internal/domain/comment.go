package domain

import "time"

// PostKind distinguishes which post family a comment is attached to.
type PostKind string

const (
	PostKindDonation PostKind = "donation"
	PostKindMissing  PostKind = "missing"
)

// Comment is free text attached to a donation or missing post. Only the
// author may delete it.
type Comment struct {
	ID         string
	PostKind   PostKind
	PostID     string
	AuthorID   string
	AuthorName string
	Body       string
	CreatedAt  time.Time
}
