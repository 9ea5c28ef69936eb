package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/talenthub/careers-api/internal/app/domain/application"
	"github.com/talenthub/careers-api/internal/app/domain/jobrole"
	"github.com/talenthub/careers-api/internal/app/domain/user"
	"github.com/talenthub/careers-api/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.JobRoleStore = (*Store)(nil)
var _ storage.ApplicationStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// mapError translates driver errors into the storage sentinels. Unique and
// foreign-key violations carry the pq error codes 23505 and 23503.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return storage.ErrDuplicate
		case "23503":
			return storage.ErrNotFound
		}
	}
	return err
}

// --- UserStore ---------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	u.CreatedAt = time.Now().UTC()

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return user.User{}, mapError(err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (user.User, error) {
	var (
		u    user.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return user.User{}, mapError(err)
	}
	u.Role = user.Role(role)
	return u, nil
}

// --- JobRoleStore ------------------------------------------------------------

func (s *Store) UpsertCapability(ctx context.Context, name string) (int64, error) {
	return s.upsertRef(ctx, "capabilities", name)
}

func (s *Store) UpsertBand(ctx context.Context, name string) (int64, error) {
	return s.upsertRef(ctx, "bands", name)
}

func (s *Store) UpsertStatus(ctx context.Context, name string) (int64, error) {
	return s.upsertRef(ctx, "statuses", name)
}

func (s *Store) upsertRef(ctx context.Context, table, name string) (int64, error) {
	// The no-op DO UPDATE makes RETURNING yield the id on conflict too.
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO `+table+` (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (s *Store) UpsertJobRole(ctx context.Context, role jobrole.Role) (jobrole.Role, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO job_roles (name, location, closing_date, description, responsibilities, info_url, open_positions, capability_id, band_id, status_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (name, location) DO UPDATE
		SET closing_date = EXCLUDED.closing_date,
		    description = EXCLUDED.description,
		    responsibilities = EXCLUDED.responsibilities,
		    info_url = EXCLUDED.info_url,
		    open_positions = EXCLUDED.open_positions,
		    capability_id = EXCLUDED.capability_id,
		    band_id = EXCLUDED.band_id,
		    status_id = EXCLUDED.status_id
		RETURNING id
	`, role.Name, role.Location, role.ClosingDate, role.Description, role.Responsibilities, role.InfoURL, role.OpenPositions, role.CapabilityID, role.BandID, role.StatusID).Scan(&role.ID)
	if err != nil {
		return jobrole.Role{}, mapError(err)
	}
	return s.GetJobRole(ctx, role.ID)
}

const jobRoleColumns = `
	jr.id, jr.name, jr.location, jr.closing_date, jr.description, jr.responsibilities, jr.info_url, jr.open_positions,
	jr.capability_id, jr.band_id, jr.status_id,
	c.name, b.name, st.name
`

const jobRoleJoins = `
	FROM job_roles jr
	JOIN capabilities c ON c.id = jr.capability_id
	JOIN bands b ON b.id = jr.band_id
	JOIN statuses st ON st.id = jr.status_id
`

func (s *Store) ListJobRoles(ctx context.Context) ([]jobrole.Role, error) {
	return s.listJobRoles(ctx, `
		SELECT `+jobRoleColumns+jobRoleJoins+`
		ORDER BY jr.id
	`)
}

func (s *Store) ListOpenJobRoles(ctx context.Context) ([]jobrole.Role, error) {
	return s.listJobRoles(ctx, `
		SELECT `+jobRoleColumns+jobRoleJoins+`
		WHERE st.name = 'Open'
		ORDER BY jr.id
	`)
}

func (s *Store) listJobRoles(ctx context.Context, query string) ([]jobrole.Role, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []jobrole.Role
	for rows.Next() {
		role, err := scanJobRole(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}

func (s *Store) GetJobRole(ctx context.Context, id int64) (jobrole.Role, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobRoleColumns+jobRoleJoins+`
		WHERE jr.id = $1
	`, id)
	return scanJobRole(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJobRole(row rowScanner) (jobrole.Role, error) {
	var role jobrole.Role
	err := row.Scan(
		&role.ID, &role.Name, &role.Location, &role.ClosingDate, &role.Description, &role.Responsibilities, &role.InfoURL, &role.OpenPositions,
		&role.CapabilityID, &role.BandID, &role.StatusID,
		&role.CapabilityName, &role.BandName, &role.StatusName,
	)
	if err != nil {
		return jobrole.Role{}, mapError(err)
	}
	return role, nil
}

// --- ApplicationStore --------------------------------------------------------

func (s *Store) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO applications (user_id, job_role_id, cv_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, app.UserID, app.JobRoleID, app.CVKey, string(app.Status), app.CreatedAt, app.UpdatedAt).Scan(&app.ID)
	if err != nil {
		return application.Application{}, mapError(err)
	}
	return s.GetApplication(ctx, app.ID)
}

const applicationColumns = `
	a.id, a.user_id, a.job_role_id, a.cv_key, a.status, a.created_at, a.updated_at, u.email
`

const applicationJoins = `
	FROM applications a
	JOIN users u ON u.id = a.user_id
`

func (s *Store) GetApplication(ctx context.Context, id int64) (application.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+applicationJoins+`
		WHERE a.id = $1
	`, id)
	return scanApplication(row)
}

func (s *Store) ListApplicationsByJobRole(ctx context.Context, jobRoleID int64) ([]application.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+applicationColumns+applicationJoins+`
		WHERE a.job_role_id = $1
		ORDER BY a.id
	`, jobRoleID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

// HireApplication records the hire and releases one open position in a single
// transaction. Both updates are conditional; if either misses, the whole
// transaction rolls back and the reason is reported through the storage
// sentinels.
func (s *Store) HireApplication(ctx context.Context, applicationID, jobRoleID int64) (application.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return application.Application{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`, applicationID, string(application.StatusHired), time.Now().UTC(), string(application.StatusInProgress))
	if err != nil {
		return application.Application{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return application.Application{}, s.explainMissedTransition(ctx, tx, applicationID)
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE job_roles
		SET open_positions = open_positions - 1
		WHERE id = $1 AND open_positions > 0
	`, jobRoleID)
	if err != nil {
		return application.Application{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return application.Application{}, storage.ErrNoOpenPositions
	}

	if err := tx.Commit(); err != nil {
		return application.Application{}, err
	}
	return s.GetApplication(ctx, applicationID)
}

func (s *Store) RejectApplication(ctx context.Context, applicationID int64) (application.Application, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`, applicationID, string(application.StatusRejected), time.Now().UTC(), string(application.StatusInProgress))
	if err != nil {
		return application.Application{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		if _, getErr := s.GetApplication(ctx, applicationID); getErr != nil {
			return application.Application{}, getErr
		}
		return application.Application{}, storage.ErrNotInProgress
	}
	return s.GetApplication(ctx, applicationID)
}

// explainMissedTransition distinguishes a missing application from one that
// already left InProgress after a conditional update hit zero rows.
func (s *Store) explainMissedTransition(ctx context.Context, tx *sql.Tx, applicationID int64) error {
	var status string
	err := tx.QueryRowContext(ctx, `
		SELECT status FROM applications WHERE id = $1
	`, applicationID).Scan(&status)
	if err != nil {
		return mapError(err)
	}
	return storage.ErrNotInProgress
}

func scanApplication(row rowScanner) (application.Application, error) {
	var (
		app    application.Application
		status string
	)
	err := row.Scan(&app.ID, &app.UserID, &app.JobRoleID, &app.CVKey, &status, &app.CreatedAt, &app.UpdatedAt, &app.Email)
	if err != nil {
		return application.Application{}, mapError(err)
	}
	app.Status = application.Status(status)
	return app, nil
}
