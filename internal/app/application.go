// Package app wires storage and domain services into one application.
package app

import (
	"github.com/talenthub/careers-api/internal/app/services/applications"
	"github.com/talenthub/careers-api/internal/app/services/auth"
	"github.com/talenthub/careers-api/internal/app/services/jobroles"
	"github.com/talenthub/careers-api/internal/app/storage"
	"github.com/talenthub/careers-api/internal/app/storage/memory"
	"github.com/talenthub/careers-api/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users        storage.UserStore
	JobRoles     storage.JobRoleStore
	Applications storage.ApplicationStore
	Files        storage.FileStore
}

// Config carries the settings the services need.
type Config struct {
	JWTSecret string
}

// Application ties the domain services together.
type Application struct {
	log *logger.Logger

	Auth         *auth.Service
	JobRoles     *jobroles.Service
	Applications *applications.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, cfg Config, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.JobRoles == nil {
		stores.JobRoles = mem
	}
	if stores.Applications == nil {
		stores.Applications = mem
	}
	if stores.Files == nil {
		stores.Files = memory.NewBlob()
	}

	return &Application{
		log:          log,
		Auth:         auth.New(stores.Users, cfg.JWTSecret, log),
		JobRoles:     jobroles.New(stores.JobRoles, log),
		Applications: applications.New(stores.Applications, stores.JobRoles, stores.Files, log),
	}
}
