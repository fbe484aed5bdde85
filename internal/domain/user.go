package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleCaregiver UserRole = "caregiver"
	UserRoleAdmin     UserRole = "admin"
)

// ParseUserRole converts a raw string to a UserRole, returning an error for
// unknown values.
func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(s)
	switch r {
	case UserRoleUser, UserRoleCaregiver, UserRoleAdmin:
		return r, nil
	}
	return "", ErrUnauthorized
}

// User represents an authenticated account within the platform.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Location     Location
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Caregiver is the professional profile attached to a user with the
// caregiver role.
type Caregiver struct {
	ID          string
	UserID      string
	Name        string
	Bio         string
	HourlyRate  int64
	City        string
	Verified    bool
	RatingAvg   float64
	RatingCount int
	CreatedAt   time.Time
}
