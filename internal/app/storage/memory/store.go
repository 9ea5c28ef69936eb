// Package memory provides a thread-safe in-memory implementation of the
// storage interfaces. It is intended for tests and local prototyping and
// mirrors the consistency guarantees the postgres store provides through
// constraints and transactions.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/talenthub/careers-api/internal/app/domain/application"
	"github.com/talenthub/careers-api/internal/app/domain/jobrole"
	"github.com/talenthub/careers-api/internal/app/domain/user"
	"github.com/talenthub/careers-api/internal/app/storage"
)

// Store is an in-memory persistence layer. The single mutex stands in for
// the postgres store's transactions: every multi-row mutation happens under
// one lock hold.
type Store struct {
	mu sync.RWMutex

	nextID       int64
	users        map[int64]user.User
	usersByEmail map[string]int64
	capabilities map[string]int64
	bands        map[string]int64
	statuses     map[string]int64
	statusNames  map[int64]string
	capNames     map[int64]string
	bandNames    map[int64]string
	roles        map[int64]jobrole.Role
	roleKeys     map[string]int64 // (name, location) -> role id
	applications map[int64]application.Application
	applied      map[[2]int64]int64 // (user id, role id) -> application id
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.JobRoleStore = (*Store)(nil)
var _ storage.ApplicationStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:       1,
		users:        make(map[int64]user.User),
		usersByEmail: make(map[string]int64),
		capabilities: make(map[string]int64),
		bands:        make(map[string]int64),
		statuses:     make(map[string]int64),
		statusNames:  make(map[int64]string),
		capNames:     make(map[int64]string),
		bandNames:    make(map[int64]string),
		roles:        make(map[int64]jobrole.Role),
		roleKeys:     make(map[string]int64),
		applications: make(map[int64]application.Application),
		applied:      make(map[[2]int64]int64),
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// --- UserStore ---------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[u.Email]; exists {
		return user.User{}, storage.ErrDuplicate
	}

	u.ID = s.nextIDLocked()
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = u
	s.usersByEmail[u.Email] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

// --- JobRoleStore ------------------------------------------------------------

func (s *Store) UpsertCapability(_ context.Context, name string) (int64, error) {
	return s.upsertRef(s.capabilities, s.capNames, name), nil
}

func (s *Store) UpsertBand(_ context.Context, name string) (int64, error) {
	return s.upsertRef(s.bands, s.bandNames, name), nil
}

func (s *Store) UpsertStatus(_ context.Context, name string) (int64, error) {
	return s.upsertRef(s.statuses, s.statusNames, name), nil
}

func (s *Store) upsertRef(byName map[string]int64, byID map[int64]string, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := byName[name]; ok {
		return id
	}
	id := s.nextIDLocked()
	byName[name] = id
	byID[id] = name
	return id
}

func (s *Store) UpsertJobRole(_ context.Context, role jobrole.Role) (jobrole.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := role.Name + "\x00" + role.Location
	if id, ok := s.roleKeys[key]; ok {
		role.ID = id
	} else {
		role.ID = s.nextIDLocked()
		s.roleKeys[key] = role.ID
	}
	s.roles[role.ID] = role
	return s.enrichRoleLocked(role), nil
}

func (s *Store) ListJobRoles(_ context.Context) ([]jobrole.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []jobrole.Role
	for _, id := range s.sortedRoleIDsLocked() {
		result = append(result, s.enrichRoleLocked(s.roles[id]))
	}
	return result, nil
}

func (s *Store) ListOpenJobRoles(_ context.Context) ([]jobrole.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []jobrole.Role
	for _, id := range s.sortedRoleIDsLocked() {
		role := s.enrichRoleLocked(s.roles[id])
		if strings.EqualFold(role.StatusName, "Open") {
			result = append(result, role)
		}
	}
	return result, nil
}

func (s *Store) GetJobRole(_ context.Context, id int64) (jobrole.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.roles[id]
	if !ok {
		return jobrole.Role{}, storage.ErrNotFound
	}
	return s.enrichRoleLocked(role), nil
}

func (s *Store) sortedRoleIDsLocked() []int64 {
	ids := make([]int64, 0, len(s.roles))
	for id := range s.roles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) enrichRoleLocked(role jobrole.Role) jobrole.Role {
	role.CapabilityName = s.capNames[role.CapabilityID]
	role.BandName = s.bandNames[role.BandID]
	role.StatusName = s.statusNames[role.StatusID]
	return role
}

// --- ApplicationStore --------------------------------------------------------

func (s *Store) CreateApplication(_ context.Context, app application.Application) (application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[app.UserID]; !ok {
		return application.Application{}, storage.ErrNotFound
	}
	if _, ok := s.roles[app.JobRoleID]; !ok {
		return application.Application{}, storage.ErrNotFound
	}

	key := [2]int64{app.UserID, app.JobRoleID}
	if _, exists := s.applied[key]; exists {
		return application.Application{}, storage.ErrDuplicate
	}

	now := time.Now().UTC()
	app.ID = s.nextIDLocked()
	app.CreatedAt = now
	app.UpdatedAt = now
	s.applications[app.ID] = app
	s.applied[key] = app.ID
	return s.enrichApplicationLocked(app), nil
}

func (s *Store) GetApplication(_ context.Context, id int64) (application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[id]
	if !ok {
		return application.Application{}, storage.ErrNotFound
	}
	return s.enrichApplicationLocked(app), nil
}

func (s *Store) ListApplicationsByJobRole(_ context.Context, jobRoleID int64) ([]application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0)
	for id, app := range s.applications {
		if app.JobRoleID == jobRoleID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []application.Application
	for _, id := range ids {
		result = append(result, s.enrichApplicationLocked(s.applications[id]))
	}
	return result, nil
}

func (s *Store) HireApplication(_ context.Context, applicationID, jobRoleID int64) (application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[applicationID]
	if !ok {
		return application.Application{}, storage.ErrNotFound
	}
	if app.Status != application.StatusInProgress {
		return application.Application{}, storage.ErrNotInProgress
	}

	role, ok := s.roles[jobRoleID]
	if !ok {
		return application.Application{}, storage.ErrNotFound
	}
	if role.OpenPositions <= 0 {
		return application.Application{}, storage.ErrNoOpenPositions
	}

	// Both writes happen under the same lock hold: the hire is recorded and
	// capacity reduced together or not at all.
	app.Status = application.StatusHired
	app.UpdatedAt = time.Now().UTC()
	role.OpenPositions--
	s.applications[applicationID] = app
	s.roles[jobRoleID] = role
	return s.enrichApplicationLocked(app), nil
}

func (s *Store) RejectApplication(_ context.Context, applicationID int64) (application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[applicationID]
	if !ok {
		return application.Application{}, storage.ErrNotFound
	}
	if app.Status != application.StatusInProgress {
		return application.Application{}, storage.ErrNotInProgress
	}

	app.Status = application.StatusRejected
	app.UpdatedAt = time.Now().UTC()
	s.applications[applicationID] = app
	return s.enrichApplicationLocked(app), nil
}

func (s *Store) enrichApplicationLocked(app application.Application) application.Application {
	if u, ok := s.users[app.UserID]; ok {
		app.Email = u.Email
	}
	return app
}
