package user

import "time"

// Role classifies what a user may do: administrators review and decide on
// applications, applicants browse roles and submit CVs.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleApplicant Role = "APPLICANT"
)

// IsValidRole reports whether value names a known user role.
func IsValidRole(value string) bool {
	switch Role(value) {
	case RoleAdmin, RoleApplicant:
		return true
	}
	return false
}

// User is a registered account. Accounts are immutable after registration.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
