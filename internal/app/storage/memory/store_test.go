package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/talenthub/careers-api/internal/app/domain/application"
	"github.com/talenthub/careers-api/internal/app/domain/jobrole"
	"github.com/talenthub/careers-api/internal/app/domain/user"
	"github.com/talenthub/careers-api/internal/app/storage"
)

func seedRole(t *testing.T, s *Store, openPositions int, status string) jobrole.Role {
	t.Helper()
	ctx := context.Background()

	capID, err := s.UpsertCapability(ctx, "Engineering")
	if err != nil {
		t.Fatalf("upsert capability: %v", err)
	}
	bandID, err := s.UpsertBand(ctx, "Associate")
	if err != nil {
		t.Fatalf("upsert band: %v", err)
	}
	statusID, err := s.UpsertStatus(ctx, status)
	if err != nil {
		t.Fatalf("upsert status: %v", err)
	}

	role, err := s.UpsertJobRole(ctx, jobrole.Role{
		Name:          "Software Engineer",
		Location:      "Belfast",
		ClosingDate:   time.Now().Add(24 * time.Hour),
		OpenPositions: openPositions,
		CapabilityID:  capID,
		BandID:        bandID,
		StatusID:      statusID,
	})
	if err != nil {
		t.Fatalf("upsert job role: %v", err)
	}
	return role
}

func seedUser(t *testing.T, s *Store, email string) user.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), user.User{
		Email:        email,
		PasswordHash: "hash",
		Role:         user.RoleApplicant,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedApplication(t *testing.T, s *Store, userID, roleID int64) application.Application {
	t.Helper()
	app, err := s.CreateApplication(context.Background(), application.Application{
		UserID:    userID,
		JobRoleID: roleID,
		CVKey:     "applications/cv.pdf",
		Status:    application.StatusInProgress,
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	return app
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := New()
	seedUser(t, s, "jane@example.com")

	_, err := s.CreateUser(context.Background(), user.User{Email: "jane@example.com", Role: user.RoleApplicant})
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateApplicationUniquePerUserAndRole(t *testing.T) {
	s := New()
	role := seedRole(t, s, 2, "Open")
	u := seedUser(t, s, "jane@example.com")
	seedApplication(t, s, u.ID, role.ID)

	_, err := s.CreateApplication(context.Background(), application.Application{
		UserID:    u.ID,
		JobRoleID: role.ID,
		Status:    application.StatusInProgress,
	})
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateApplicationUnknownReferences(t *testing.T) {
	s := New()
	role := seedRole(t, s, 1, "Open")
	u := seedUser(t, s, "jane@example.com")

	if _, err := s.CreateApplication(context.Background(), application.Application{UserID: 999, JobRoleID: role.ID}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unknown user: expected ErrNotFound, got %v", err)
	}
	if _, err := s.CreateApplication(context.Background(), application.Application{UserID: u.ID, JobRoleID: 999}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unknown role: expected ErrNotFound, got %v", err)
	}
}

func TestListOpenJobRolesFiltersByStatus(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedRole(t, s, 1, "Open")

	capID, _ := s.UpsertCapability(ctx, "Design")
	bandID, _ := s.UpsertBand(ctx, "Consultant")
	closedID, _ := s.UpsertStatus(ctx, "Closed")
	if _, err := s.UpsertJobRole(ctx, jobrole.Role{
		Name: "UX Designer", Location: "Belfast",
		CapabilityID: capID, BandID: bandID, StatusID: closedID,
	}); err != nil {
		t.Fatalf("upsert closed role: %v", err)
	}

	all, err := s.ListJobRoles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(all))
	}

	open, err := s.ListOpenJobRoles(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].StatusName != "Open" {
		t.Fatalf("expected exactly the open role, got %+v", open)
	}
}

func TestHireDecrementsOpenPositions(t *testing.T) {
	s := New()
	ctx := context.Background()
	role := seedRole(t, s, 2, "Open")
	u := seedUser(t, s, "jane@example.com")
	app := seedApplication(t, s, u.ID, role.ID)

	hired, err := s.HireApplication(ctx, app.ID, role.ID)
	if err != nil {
		t.Fatalf("hire: %v", err)
	}
	if hired.Status != application.StatusHired {
		t.Fatalf("expected Hired, got %s", hired.Status)
	}
	if hired.Email != "jane@example.com" {
		t.Fatalf("expected enriched email, got %q", hired.Email)
	}

	after, err := s.GetJobRole(ctx, role.ID)
	if err != nil {
		t.Fatalf("get role: %v", err)
	}
	if after.OpenPositions != 1 {
		t.Fatalf("expected 1 open position, got %d", after.OpenPositions)
	}
}

func TestHireTerminalApplication(t *testing.T) {
	s := New()
	ctx := context.Background()
	role := seedRole(t, s, 2, "Open")
	u := seedUser(t, s, "jane@example.com")
	app := seedApplication(t, s, u.ID, role.ID)

	if _, err := s.RejectApplication(ctx, app.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := s.HireApplication(ctx, app.ID, role.ID); !errors.Is(err, storage.ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}

	// The failed hire must not touch the role.
	after, _ := s.GetJobRole(ctx, role.ID)
	if after.OpenPositions != 2 {
		t.Fatalf("expected 2 open positions, got %d", after.OpenPositions)
	}
}

func TestHireWithoutOpenPositions(t *testing.T) {
	s := New()
	ctx := context.Background()
	role := seedRole(t, s, 0, "Open")
	u := seedUser(t, s, "jane@example.com")
	app := seedApplication(t, s, u.ID, role.ID)

	if _, err := s.HireApplication(ctx, app.ID, role.ID); !errors.Is(err, storage.ErrNoOpenPositions) {
		t.Fatalf("expected ErrNoOpenPositions, got %v", err)
	}

	// A failed hire leaves the application untouched.
	after, _ := s.GetApplication(ctx, app.ID)
	if after.Status != application.StatusInProgress {
		t.Fatalf("expected InProgress, got %s", after.Status)
	}
}

func TestConcurrentHiresConsumeExactCapacity(t *testing.T) {
	s := New()
	ctx := context.Background()
	role := seedRole(t, s, 1, "Open")

	const applicants = 8
	apps := make([]application.Application, applicants)
	for i := 0; i < applicants; i++ {
		u := seedUser(t, s, string(rune('a'+i))+"@example.com")
		apps[i] = seedApplication(t, s, u.ID, role.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, applicants)
	for i := 0; i < applicants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.HireApplication(ctx, apps[i].ID, role.ID)
		}(i)
	}
	wg.Wait()

	var hired int
	for _, err := range errs {
		if err == nil {
			hired++
		} else if !errors.Is(err, storage.ErrNoOpenPositions) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if hired != 1 {
		t.Fatalf("expected exactly 1 successful hire, got %d", hired)
	}

	after, _ := s.GetJobRole(ctx, role.ID)
	if after.OpenPositions != 0 {
		t.Fatalf("expected 0 open positions, got %d", after.OpenPositions)
	}
}

func TestRejectDoesNotTouchOpenPositions(t *testing.T) {
	s := New()
	ctx := context.Background()
	role := seedRole(t, s, 3, "Open")
	u := seedUser(t, s, "jane@example.com")
	app := seedApplication(t, s, u.ID, role.ID)

	rejected, err := s.RejectApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != application.StatusRejected {
		t.Fatalf("expected Rejected, got %s", rejected.Status)
	}

	after, _ := s.GetJobRole(ctx, role.ID)
	if after.OpenPositions != 3 {
		t.Fatalf("expected 3 open positions, got %d", after.OpenPositions)
	}
}

func TestUpsertJobRoleIsIdempotentPerNameAndLocation(t *testing.T) {
	s := New()
	first := seedRole(t, s, 2, "Open")
	second := seedRole(t, s, 5, "Open")

	if first.ID != second.ID {
		t.Fatalf("expected same role id, got %d and %d", first.ID, second.ID)
	}
	if second.OpenPositions != 5 {
		t.Fatalf("expected updated open positions, got %d", second.OpenPositions)
	}
}
