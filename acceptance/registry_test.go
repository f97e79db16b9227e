package acceptance

import (
	"context"
	"errors"
	"testing"

	"github.com/bergenbysykkel/fleet-backend/bike"
	"github.com/bergenbysykkel/fleet-backend/station"
	"github.com/bergenbysykkel/fleet-backend/user"
)

func TestRegistryFindParkedBikeIsDeterministic(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ctx := context.Background()
	br := bike.NewRepository(ts.DB)

	stationID := ts.CreateTestStation(t, "Festplassen", 10, 5)
	first := ts.CreateTestBike(t, "Sykkel-1", stationID)
	ts.CreateTestBike(t, "Sykkel-2", stationID)

	for i := 0; i < 3; i++ {
		b, err := br.FindParkedBike(ctx, "Festplassen")
		if err != nil {
			t.Fatalf("FindParkedBike: %v", err)
		}
		if b.ID != first {
			t.Errorf("expected bike %d on every call, got %d", first, b.ID)
		}
	}

	_, err := br.FindParkedBike(ctx, "Ukjent")
	if !errors.Is(err, bike.ErrNoneAvailable) {
		t.Errorf("expected ErrNoneAvailable for unknown station, got %v", err)
	}
}

func TestRegistryMarkActiveAndParked(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ctx := context.Background()
	br := bike.NewRepository(ts.DB)

	stationID := ts.CreateTestStation(t, "Festplassen", 10, 5)
	bikeID := ts.CreateTestBike(t, "Sykkel-1", stationID)

	if err := br.MarkActive(ctx, bikeID); err != nil {
		t.Fatalf("MarkActive: %v", err)
	}
	// Transitions are visible to the next read, no caching in between.
	b := ts.GetBikeRow(t, bikeID)
	if b.Status != "active" || b.StationID != nil {
		t.Errorf("expected active bike without station, got %s/%v", b.Status, b.StationID)
	}

	if err := br.MarkParked(ctx, bikeID, stationID); err != nil {
		t.Fatalf("MarkParked: %v", err)
	}
	b = ts.GetBikeRow(t, bikeID)
	if b.Status != "parked" || b.StationID == nil || *b.StationID != stationID {
		t.Errorf("expected bike parked at %d, got %s/%v", stationID, b.Status, b.StationID)
	}

	if err := br.MarkActive(ctx, bikeID+1000); !errors.Is(err, bike.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown bike, got %v", err)
	}
}

func TestRegistryResolvesNames(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ctx := context.Background()
	sr := station.NewRepository(ts.DB)
	ur := user.NewRepository(ts.DB)

	stationID := ts.CreateTestStation(t, "Festplassen", 10, 5)
	userID := ts.CreateTestUser(t, "Kari Nordmann")

	if id, err := sr.ResolveID(ctx, "Festplassen"); err != nil || id != stationID {
		t.Errorf("ResolveID station: got %d, %v", id, err)
	}
	if _, err := sr.ResolveID(ctx, "Ukjent"); !errors.Is(err, station.ErrNotFound) {
		t.Errorf("expected station.ErrNotFound, got %v", err)
	}

	if id, err := ur.ResolveID(ctx, "Kari Nordmann"); err != nil || id != userID {
		t.Errorf("ResolveID user: got %d, %v", id, err)
	}
	if _, err := ur.ResolveID(ctx, "Ukjent"); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("expected user.ErrNotFound, got %v", err)
	}
}
