package application

import "time"

// Status is the lifecycle state of an application. InProgress is the initial
// state; Hired and Rejected are terminal.
type Status string

const (
	StatusInProgress Status = "InProgress"
	StatusHired      Status = "Hired"
	StatusRejected   Status = "Rejected"
)

// Terminal reports whether no further transition is defined out of s.
func (s Status) Terminal() bool {
	return s == StatusHired || s == StatusRejected
}

// Application is one applicant's submission against one job role. At most one
// application exists per (user, job role) pair; applications are never
// deleted.
type Application struct {
	ID        int64
	UserID    int64
	JobRoleID int64
	CVKey     string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	// Email is the applicant's address, populated by enriched reads.
	Email string
}
