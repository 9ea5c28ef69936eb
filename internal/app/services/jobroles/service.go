// Package jobroles exposes the role catalog.
package jobroles

import (
	"context"
	"errors"

	"github.com/talenthub/careers-api/internal/app/domain/jobrole"
	"github.com/talenthub/careers-api/internal/app/storage"
	"github.com/talenthub/careers-api/pkg/logger"
)

// Service reads job roles.
type Service struct {
	store storage.JobRoleStore
	log   *logger.Logger
}

// New constructs a job role service.
func New(store storage.JobRoleStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("jobroles")
	}
	return &Service{store: store, log: log}
}

// All returns every job role regardless of status.
func (s *Service) All(ctx context.Context) ([]jobrole.Role, error) {
	return s.store.ListJobRoles(ctx)
}

// Open returns only roles whose status is Open.
func (s *Service) Open(ctx context.Context) ([]jobrole.Role, error) {
	return s.store.ListOpenJobRoles(ctx)
}

// ByID returns the role with the given id, or nil when no such role exists.
func (s *Service) ByID(ctx context.Context, id int64) (*jobrole.Role, error) {
	role, err := s.store.GetJobRole(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}
