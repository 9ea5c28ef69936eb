// Package storage defines the persistence and blob-store contracts consumed
// by the application services, together with the sentinel errors every
// implementation must surface.
package storage

import (
	"context"
	"errors"

	"github.com/talenthub/careers-api/internal/app/domain/application"
	"github.com/talenthub/careers-api/internal/app/domain/jobrole"
	"github.com/talenthub/careers-api/internal/app/domain/user"
)

// Sentinel errors shared by all store implementations. Services translate
// these into their own domain errors.
var (
	// ErrNotFound reports that the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate reports a uniqueness violation (email, or the
	// one-application-per-user-and-role constraint).
	ErrDuplicate = errors.New("record already exists")
	// ErrNotInProgress reports a status transition attempted on an
	// application that is no longer InProgress.
	ErrNotInProgress = errors.New("application is not in progress")
	// ErrNoOpenPositions reports a hire against a role with no open
	// positions left.
	ErrNoOpenPositions = errors.New("no open positions")
)

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

// JobRoleStore persists the role catalog and its reference data. Reads are
// enriched with capability, band and status names.
type JobRoleStore interface {
	UpsertCapability(ctx context.Context, name string) (int64, error)
	UpsertBand(ctx context.Context, name string) (int64, error)
	UpsertStatus(ctx context.Context, name string) (int64, error)
	UpsertJobRole(ctx context.Context, role jobrole.Role) (jobrole.Role, error)

	ListJobRoles(ctx context.Context) ([]jobrole.Role, error)
	ListOpenJobRoles(ctx context.Context) ([]jobrole.Role, error)
	GetJobRole(ctx context.Context, id int64) (jobrole.Role, error)
}

// ApplicationStore persists applications and drives their status
// transitions. Reads are enriched with the applicant's email.
//
// CreateApplication must enforce the (user, job role) uniqueness constraint
// at the storage layer, returning ErrDuplicate, so that concurrent duplicate
// submissions yield exactly one success. HireApplication must apply the
// status update and the open-position decrement as a single atomic unit:
// both happen or neither does.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app application.Application) (application.Application, error)
	GetApplication(ctx context.Context, id int64) (application.Application, error)
	ListApplicationsByJobRole(ctx context.Context, jobRoleID int64) ([]application.Application, error)

	HireApplication(ctx context.Context, applicationID, jobRoleID int64) (application.Application, error)
	RejectApplication(ctx context.Context, applicationID int64) (application.Application, error)
}

// FileStore is the opaque blob-store collaborator holding CV files. Upload
// returns a freshly generated unique storage key; DownloadURL returns a
// time-limited link for an existing key.
type FileStore interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}
