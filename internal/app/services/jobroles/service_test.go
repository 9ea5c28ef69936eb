package jobroles

import (
	"context"
	"testing"
	"time"

	"github.com/talenthub/careers-api/internal/app/domain/jobrole"
	"github.com/talenthub/careers-api/internal/app/storage/memory"
)

func seedRoles(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	capID, err := store.UpsertCapability(ctx, "Engineering")
	if err != nil {
		t.Fatalf("upsert capability: %v", err)
	}
	bandID, err := store.UpsertBand(ctx, "Associate")
	if err != nil {
		t.Fatalf("upsert band: %v", err)
	}
	openID, err := store.UpsertStatus(ctx, "Open")
	if err != nil {
		t.Fatalf("upsert status: %v", err)
	}
	closedID, err := store.UpsertStatus(ctx, "Closed")
	if err != nil {
		t.Fatalf("upsert status: %v", err)
	}

	for _, role := range []jobrole.Role{
		{Name: "Software Engineer", Location: "Belfast", ClosingDate: time.Now().Add(time.Hour), OpenPositions: 2, CapabilityID: capID, BandID: bandID, StatusID: openID},
		{Name: "UX Designer", Location: "London", ClosingDate: time.Now().Add(time.Hour), OpenPositions: 1, CapabilityID: capID, BandID: bandID, StatusID: closedID},
	} {
		if _, err := store.UpsertJobRole(ctx, role); err != nil {
			t.Fatalf("upsert role: %v", err)
		}
	}
}

func TestAllReturnsEveryRole(t *testing.T) {
	store := memory.New()
	seedRoles(t, store)
	svc := New(store, nil)

	roles, err := svc.All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(roles))
	}
	if roles[0].CapabilityName != "Engineering" || roles[0].BandName != "Associate" {
		t.Fatalf("expected enriched names, got %+v", roles[0])
	}
}

func TestOpenFiltersClosedRoles(t *testing.T) {
	store := memory.New()
	seedRoles(t, store)
	svc := New(store, nil)

	roles, err := svc.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(roles) != 1 || roles[0].Name != "Software Engineer" {
		t.Fatalf("expected only the open role, got %+v", roles)
	}
}

func TestByIDUnknownRoleReturnsNil(t *testing.T) {
	svc := New(memory.New(), nil)

	role, err := svc.ByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if role != nil {
		t.Fatalf("expected nil for unknown role, got %+v", role)
	}
}
