package applications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talenthub/careers-api/internal/app/domain/application"
	"github.com/talenthub/careers-api/internal/app/domain/jobrole"
	"github.com/talenthub/careers-api/internal/app/domain/user"
	"github.com/talenthub/careers-api/internal/app/storage/memory"
)

type fixture struct {
	store *memory.Store
	svc   *Service
	user  user.User
	role  jobrole.Role
}

func newFixture(t *testing.T, openPositions int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	capID, err := store.UpsertCapability(ctx, "Engineering")
	require.NoError(t, err)
	bandID, err := store.UpsertBand(ctx, "Associate")
	require.NoError(t, err)
	statusID, err := store.UpsertStatus(ctx, "Open")
	require.NoError(t, err)

	role, err := store.UpsertJobRole(ctx, jobrole.Role{
		Name:          "Software Engineer",
		Location:      "Belfast",
		ClosingDate:   time.Now().Add(24 * time.Hour),
		OpenPositions: openPositions,
		CapabilityID:  capID,
		BandID:        bandID,
		StatusID:      statusID,
	})
	require.NoError(t, err)

	u, err := store.CreateUser(ctx, user.User{
		Email:        "jane@example.com",
		PasswordHash: "hash",
		Role:         user.RoleApplicant,
	})
	require.NoError(t, err)

	return &fixture{
		store: store,
		svc:   New(store, store, memory.NewBlob(), nil),
		user:  u,
		role:  role,
	}
}

func testCV() *CVFile {
	return &CVFile{Name: "cv.pdf", ContentType: "application/pdf", Data: []byte("dummy cv")}
}

func (f *fixture) apply(t *testing.T) application.Application {
	t.Helper()
	app, err := f.svc.Create(context.Background(), f.user.ID, f.role.ID, testCV())
	require.NoError(t, err)
	return app
}

func TestCreateRequiresCV(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.user.ID, f.role.ID, nil)
	require.ErrorIs(t, err, ErrCVRequired)

	_, err = f.svc.Create(ctx, f.user.ID, f.role.ID, &CVFile{Name: "cv.pdf"})
	require.ErrorIs(t, err, ErrCVRequired)
}

func TestCreateStartsInProgressWithStoredCV(t *testing.T) {
	f := newFixture(t, 1)

	app := f.apply(t)
	require.Equal(t, application.StatusInProgress, app.Status)
	require.NotEmpty(t, app.CVKey)
	require.Equal(t, "jane@example.com", app.Email)
}

func TestCreateRejectsSecondApplication(t *testing.T) {
	f := newFixture(t, 1)
	f.apply(t)

	_, err := f.svc.Create(context.Background(), f.user.ID, f.role.ID, testCV())
	require.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestCreateUnknownJobRole(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.svc.Create(context.Background(), f.user.ID, 999, testCV())
	require.ErrorIs(t, err, ErrJobRoleNotFound)
}

func TestHireConsumesOnePosition(t *testing.T) {
	f := newFixture(t, 3)
	app := f.apply(t)
	ctx := context.Background()

	hired, err := f.svc.Hire(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, application.StatusHired, hired.Status)

	role, err := f.store.GetJobRole(ctx, f.role.ID)
	require.NoError(t, err)
	require.Equal(t, 2, role.OpenPositions)
}

func TestHireTerminalApplication(t *testing.T) {
	f := newFixture(t, 3)
	app := f.apply(t)
	ctx := context.Background()

	_, err := f.svc.Reject(ctx, app.ID)
	require.NoError(t, err)

	_, err = f.svc.Hire(ctx, app.ID)
	var statusErr *InvalidStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, "hire", statusErr.Op)
	require.Equal(t, application.StatusRejected, statusErr.Status)
	require.EqualError(t, err, `cannot hire: application status is "Rejected"`)

	// Capacity is untouched by the failed hire.
	role, err := f.store.GetJobRole(ctx, f.role.ID)
	require.NoError(t, err)
	require.Equal(t, 3, role.OpenPositions)
}

func TestHireWithoutCapacity(t *testing.T) {
	f := newFixture(t, 0)
	app := f.apply(t)

	_, err := f.svc.Hire(context.Background(), app.ID)
	require.ErrorIs(t, err, ErrNoOpenPositions)

	// The application stays InProgress and can still be rejected.
	stored, err := f.store.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	require.Equal(t, application.StatusInProgress, stored.Status)
}

func TestRejectLeavesCapacityAlone(t *testing.T) {
	f := newFixture(t, 2)
	app := f.apply(t)
	ctx := context.Background()

	rejected, err := f.svc.Reject(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, application.StatusRejected, rejected.Status)

	role, err := f.store.GetJobRole(ctx, f.role.ID)
	require.NoError(t, err)
	require.Equal(t, 2, role.OpenPositions)
}

func TestRejectTerminalApplication(t *testing.T) {
	f := newFixture(t, 2)
	app := f.apply(t)
	ctx := context.Background()

	_, err := f.svc.Hire(ctx, app.ID)
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, app.ID)
	var statusErr *InvalidStatusError
	require.ErrorAs(t, err, &statusErr)
	require.EqualError(t, err, `cannot reject: application status is "Hired"`)
}

func TestDecisionsOnUnknownApplication(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	_, err := f.svc.Hire(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Reject(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCVDownloadURLResolvesStoredKey(t *testing.T) {
	f := newFixture(t, 1)
	app := f.apply(t)

	url, err := f.svc.CVDownloadURL(context.Background(), app.ID)
	require.NoError(t, err)
	require.Contains(t, url, app.CVKey)
}

func TestCVDownloadURLUnknownApplication(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.svc.CVDownloadURL(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNormalizeCVRef(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare key", "applications/2024-01-01-abc-cv.pdf", "applications/2024-01-01-abc-cv.pdf"},
		{"bucket url", "https://bucket.s3.amazonaws.com/applications/abc-cv.pdf", "applications/abc-cv.pdf"},
		{"foreign url", "https://example.com/files/cv.pdf", "https://example.com/files/cv.pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, normalizeCVRef(tc.in))
		})
	}
}
