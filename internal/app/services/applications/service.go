// Package applications implements the application lifecycle: submission,
// review listing, hire and reject decisions, and CV retrieval.
package applications

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/talenthub/careers-api/internal/app/domain/application"
	"github.com/talenthub/careers-api/internal/app/storage"
	"github.com/talenthub/careers-api/pkg/logger"
)

var (
	// ErrCVRequired reports a submission without a CV file.
	ErrCVRequired = errors.New("cv file is required")
	// ErrAlreadyApplied reports a second submission by the same user against
	// the same role.
	ErrAlreadyApplied = errors.New("you have already applied to this job role")
	// ErrNotFound reports an unknown application id.
	ErrNotFound = errors.New("application not found")
	// ErrNoOpenPositions reports a hire against a role with no capacity left.
	ErrNoOpenPositions = errors.New("cannot hire: no open positions available for this role")
	// ErrCVMissing reports an application whose stored CV key is empty.
	ErrCVMissing = errors.New("cv not found")
	// ErrJobRoleNotFound reports a submission against an unknown role.
	ErrJobRoleNotFound = errors.New("job role not found")
)

// InvalidStatusError reports a hire or reject attempted on an application
// that already reached a terminal status.
type InvalidStatusError struct {
	Op     string
	Status application.Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("cannot %s: application status is %q", e.Op, e.Status)
}

// CVFile is an uploaded CV as received from the multipart form.
type CVFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service manages applications.
type Service struct {
	store    storage.ApplicationStore
	jobRoles storage.JobRoleStore
	files    storage.FileStore
	log      *logger.Logger
}

// New constructs an application service.
func New(store storage.ApplicationStore, jobRoles storage.JobRoleStore, files storage.FileStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("applications")
	}
	return &Service{store: store, jobRoles: jobRoles, files: files, log: log}
}

// Create submits an application for userID against jobRoleID. The CV is
// uploaded first; the application row then references its storage key. The
// store's uniqueness constraint decides duplicate submissions, so concurrent
// duplicates yield exactly one success.
func (s *Service) Create(ctx context.Context, userID, jobRoleID int64, cv *CVFile) (application.Application, error) {
	if cv == nil || len(cv.Data) == 0 {
		return application.Application{}, ErrCVRequired
	}

	if _, err := s.jobRoles.GetJobRole(ctx, jobRoleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return application.Application{}, ErrJobRoleNotFound
		}
		return application.Application{}, err
	}

	key, err := s.files.Upload(ctx, cv.Name, cv.ContentType, cv.Data)
	if err != nil {
		return application.Application{}, fmt.Errorf("upload cv: %w", err)
	}

	created, err := s.store.CreateApplication(ctx, application.Application{
		UserID:    userID,
		JobRoleID: jobRoleID,
		CVKey:     key,
		Status:    application.StatusInProgress,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			return application.Application{}, ErrAlreadyApplied
		case errors.Is(err, storage.ErrNotFound):
			return application.Application{}, ErrJobRoleNotFound
		}
		return application.Application{}, err
	}

	s.log.WithFields(map[string]any{"application_id": created.ID, "job_role_id": jobRoleID}).Info("application submitted")
	return created, nil
}

// ListByJobRole returns every application against the given role.
func (s *Service) ListByJobRole(ctx context.Context, jobRoleID int64) ([]application.Application, error) {
	return s.store.ListApplicationsByJobRole(ctx, jobRoleID)
}

// Hire moves an InProgress application to Hired and consumes one open
// position on its role, atomically. The pre-read yields precise errors for
// the common failures; the store's conditional updates remain authoritative
// when a concurrent decision wins the race.
func (s *Service) Hire(ctx context.Context, applicationID int64) (application.Application, error) {
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if app.Status != application.StatusInProgress {
		return application.Application{}, &InvalidStatusError{Op: "hire", Status: app.Status}
	}

	role, err := s.jobRoles.GetJobRole(ctx, app.JobRoleID)
	if err != nil {
		return application.Application{}, err
	}
	if role.OpenPositions <= 0 {
		return application.Application{}, ErrNoOpenPositions
	}

	hired, err := s.store.HireApplication(ctx, applicationID, app.JobRoleID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return application.Application{}, ErrNotFound
		case errors.Is(err, storage.ErrNotInProgress):
			return application.Application{}, &InvalidStatusError{Op: "hire", Status: app.Status}
		case errors.Is(err, storage.ErrNoOpenPositions):
			return application.Application{}, ErrNoOpenPositions
		}
		return application.Application{}, err
	}

	s.log.WithFields(map[string]any{"application_id": hired.ID, "job_role_id": hired.JobRoleID}).Info("applicant hired")
	return hired, nil
}

// Reject moves an InProgress application to Rejected.
func (s *Service) Reject(ctx context.Context, applicationID int64) (application.Application, error) {
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if app.Status != application.StatusInProgress {
		return application.Application{}, &InvalidStatusError{Op: "reject", Status: app.Status}
	}

	rejected, err := s.store.RejectApplication(ctx, applicationID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return application.Application{}, ErrNotFound
		case errors.Is(err, storage.ErrNotInProgress):
			return application.Application{}, &InvalidStatusError{Op: "reject", Status: app.Status}
		}
		return application.Application{}, err
	}

	s.log.WithField("application_id", rejected.ID).Info("applicant rejected")
	return rejected, nil
}

// CVDownloadURL resolves the application's stored CV reference to a link the
// caller can be redirected to. Legacy rows hold a full URL instead of a bare
// key; those are unwrapped to the key when it points at object storage, or
// passed through unchanged otherwise.
func (s *Service) CVDownloadURL(ctx context.Context, applicationID int64) (string, error) {
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return "", err
	}
	if app.CVKey == "" {
		return "", ErrCVMissing
	}

	ref := normalizeCVRef(app.CVKey)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	return s.files.DownloadURL(ctx, ref)
}

func (s *Service) get(ctx context.Context, applicationID int64) (application.Application, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return application.Application{}, ErrNotFound
		}
		return application.Application{}, err
	}
	return app, nil
}

// normalizeCVRef extracts the object key from a stored URL when the URL path
// carries one. Anything that does not parse as a URL is already a key.
func normalizeCVRef(ref string) string {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil || parsed.Path == "" || parsed.Path == "/" {
		return ref
	}
	if key := strings.TrimPrefix(parsed.Path, "/"); strings.HasPrefix(key, "applications/") {
		return key
	}
	return ref
}
