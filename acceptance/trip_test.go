package acceptance

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestCheckoutThenDropoffAtOtherStation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "Kari Nordmann")
	stationA := ts.CreateTestStation(t, "Festplassen", 10, 5)
	stationB := ts.CreateTestStation(t, "Torgallmenningen", 10, 5)
	bikeID := ts.CreateTestBike(t, "Sykkel-1", stationA)

	w := ts.POST("/trips/checkout", map[string]string{"user": "Kari Nordmann", "station": "Festplassen"})
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		TripID int64 `json:"tripId"`
		BikeID int64 `json:"bikeId"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.BikeID != bikeID {
		t.Errorf("expected bike %d, got %s", bikeID, spew.Sdump(resp))
	}

	b := ts.GetBikeRow(t, bikeID)
	if b.Status != "active" || b.StationID != nil {
		t.Errorf("after checkout bike should be active without a station, got %s/%v", b.Status, b.StationID)
	}
	if got := ts.GetAvailableSpots(t, stationA); got != 4 {
		t.Errorf("checkout should take a spot: expected 4 available, got %d", got)
	}

	w = ts.POST("/trips/dropoff", map[string]string{"user": "Kari Nordmann", "station": "Torgallmenningen"})
	if w.Code != http.StatusOK {
		t.Fatalf("dropoff: expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	b = ts.GetBikeRow(t, bikeID)
	if b.Status != "parked" || b.StationID == nil || *b.StationID != stationB {
		t.Errorf("after dropoff bike should be parked at %d, got %s/%v", stationB, b.Status, b.StationID)
	}
	if got := ts.GetAvailableSpots(t, stationB); got != 6 {
		t.Errorf("dropoff should free a spot: expected 6 available, got %d", got)
	}

	var closed struct {
		EndStationID *int64 `db:"end_station_id"`
		Closed       bool   `db:"closed"`
	}
	err := ts.DB.Get(&closed, `SELECT end_station_id, end_time IS NOT NULL AS closed FROM trips WHERE id = $1`, resp.TripID)
	if err != nil {
		t.Fatalf("failed to read trip: %v", err)
	}
	if !closed.Closed || closed.EndStationID == nil || *closed.EndStationID != stationB {
		t.Errorf("trip should be closed at station %d, got %+v", stationB, closed)
	}
}

func TestCheckoutPicksLowestBikeID(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "Kari Nordmann")
	stationID := ts.CreateTestStation(t, "Festplassen", 10, 5)
	first := ts.CreateTestBike(t, "Sykkel-1", stationID)
	ts.CreateTestBike(t, "Sykkel-2", stationID)

	w := ts.POST("/trips/checkout", map[string]string{"user": "Kari Nordmann", "station": "Festplassen"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		BikeID int64 `json:"bikeId"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.BikeID != first {
		t.Errorf("expected lowest bike id %d, got %d", first, resp.BikeID)
	}
}

func TestCheckoutNoBikesMutatesNothing(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "Kari Nordmann")
	stationID := ts.CreateTestStation(t, "Festplassen", 10, 5)

	w := ts.POST("/trips/checkout", map[string]string{"user": "Kari Nordmann", "station": "Festplassen"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["code"] != "NO_BIKES_AVAILABLE" {
		t.Errorf("expected code NO_BIKES_AVAILABLE, got %s", resp["code"])
	}

	var trips int
	if err := ts.DB.Get(&trips, `SELECT COUNT(*) FROM trips`); err != nil {
		t.Fatalf("failed to count trips: %v", err)
	}
	if trips != 0 {
		t.Errorf("rejected checkout must not create trips, found %d", trips)
	}
	if got := ts.GetAvailableSpots(t, stationID); got != 5 {
		t.Errorf("rejected checkout must not touch spots, got %d", got)
	}
}

func TestCheckoutUnknownUserAndStation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	stationID := ts.CreateTestStation(t, "Festplassen", 10, 5)
	ts.CreateTestBike(t, "Sykkel-1", stationID)

	w := ts.POST("/trips/checkout", map[string]string{"user": "Kari Nordmann", "station": "Nowhere"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown station: expected %d, got %d: %s", http.StatusNotFound, w.Code, w.Body.String())
	}

	w = ts.POST("/trips/checkout", map[string]string{"user": "Kari Nordmann", "station": "Festplassen"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user: expected %d, got %d: %s", http.StatusNotFound, w.Code, w.Body.String())
	}

	// An unknown user must not leave a dangling trip behind.
	var trips int
	if err := ts.DB.Get(&trips, `SELECT COUNT(*) FROM trips`); err != nil {
		t.Fatalf("failed to count trips: %v", err)
	}
	if trips != 0 {
		t.Errorf("expected no trips, found %d", trips)
	}

	w = ts.POST("/trips/checkout", map[string]string{"user": "", "station": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty names: expected %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
}

func TestDropoffWithoutActiveTrip(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "Kari Nordmann")
	ts.CreateTestStation(t, "Festplassen", 10, 5)

	w := ts.POST("/trips/dropoff", map[string]string{"user": "Kari Nordmann", "station": "Festplassen"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["code"] != "NO_ACTIVE_TRIP" {
		t.Errorf("expected code NO_ACTIVE_TRIP, got %s", resp["code"])
	}
}

func TestConcurrentCheckoutSingleBike(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "Kari Nordmann")
	ts.CreateTestUser(t, "Ola Nordmann")
	stationID := ts.CreateTestStation(t, "Festplassen", 10, 5)
	ts.CreateTestBike(t, "Sykkel-1", stationID)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i, name := range []string{"Kari Nordmann", "Ola Nordmann"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := ts.POST("/trips/checkout", map[string]string{"user": name, "station": "Festplassen"})
			codes[i] = w.Code
		}()
	}
	wg.Wait()

	wins, losses := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			wins++
		case http.StatusConflict:
			losses++
		}
	}
	if wins != 1 || losses != 1 {
		t.Errorf("expected exactly one winner and one conflict, got codes %v", codes)
	}

	var open int
	if err := ts.DB.Get(&open, `SELECT COUNT(*) FROM trips WHERE end_time IS NULL`); err != nil {
		t.Fatalf("failed to count open trips: %v", err)
	}
	if open != 1 {
		t.Errorf("expected exactly one open trip, found %d", open)
	}
}

func TestTripCountsPerEndStation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "Kari Nordmann")
	bryggen := ts.CreateTestStation(t, "Bryggen", 10, 5)
	stationB := ts.CreateTestStation(t, "Torgallmenningen", 10, 5)
	ts.CreateTestBike(t, "Sykkel-1", bryggen)

	// Two round trips ending at the same station. The bike parks at
	// Torgallmenningen after the first dropoff, so the second trip starts
	// from there.
	for i, start := range []string{"Bryggen", "Torgallmenningen"} {
		if w := ts.POST("/trips/checkout", map[string]string{"user": "Kari Nordmann", "station": start}); w.Code != http.StatusOK {
			t.Fatalf("checkout %d failed: %s", i, w.Body.String())
		}
		if w := ts.POST("/trips/dropoff", map[string]string{"user": "Kari Nordmann", "station": "Torgallmenningen"}); w.Code != http.StatusOK {
			t.Fatalf("dropoff %d failed: %s", i, w.Body.String())
		}
	}

	w := ts.GET("/stations/trip-counts")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var counts []struct {
		StationID int64 `json:"StationID"`
		Trips     int   `json:"Trips"`
	}
	json.Unmarshal(w.Body.Bytes(), &counts)
	if len(counts) != 1 || counts[0].StationID != stationB || counts[0].Trips != 2 {
		t.Errorf("unexpected counts: %s", spew.Sdump(counts))
	}
}
