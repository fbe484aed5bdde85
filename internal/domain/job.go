// Job lifecycle state machine:
//
//	OPEN ──► ONGOING ──► CLOSED
//	  │                     ▲
//	  └─────────────────────┘  (owner cancels without selecting)
//
// A caregiver is selected exactly when OPEN moves to ONGOING; CLOSED is
// terminal.
package domain

import (
	"fmt"
	"time"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobOpen    JobStatus = "OPEN"
	JobOngoing JobStatus = "ONGOING"
	JobClosed  JobStatus = "CLOSED"
)

// jobTransitions lists every allowed (from → to) pair.
var jobTransitions = map[JobStatus][]JobStatus{
	JobOpen:    {JobOngoing, JobClosed},
	JobOngoing: {JobClosed},
	// CLOSED is terminal
}

// ParseJobStatus converts a raw string to a JobStatus, returning an error
// for unknown values.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	switch st {
	case JobOpen, JobOngoing, JobClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// JobTransitionAllowed reports whether moving from → to is permitted.
func JobTransitionAllowed(from, to JobStatus) bool {
	for _, s := range jobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// JobPost is a posted caregiving job.
type JobPost struct {
	ID                  string
	OwnerID             string
	Title               string
	Description         string
	Tags                []string
	Location            Location
	PriceLow            int64
	PriceHigh           int64
	StartDate           time.Time
	EndDate             time.Time
	Status              JobStatus
	SelectedCaregiverID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ApplicationStatus mirrors the caregiver-selection outcome on the job.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// Application is a caregiver's bid on a job post. Unique per
// (caregiver, post); the requested amount must fall inside the post's
// price range.
type Application struct {
	ID          string
	JobPostID   string
	CaregiverID string
	Proposal    string
	Amount      int64
	Status      ApplicationStatus
	CreatedAt   time.Time
}

// Review rates the selected caregiver of a job, submitted by the owner when
// ending it. One per job.
type Review struct {
	ID          string
	JobPostID   string
	CaregiverID string
	ReviewerID  string
	Rating      int
	Body        string
	CreatedAt   time.Time
}
