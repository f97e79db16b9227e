package acceptance

import (
	"encoding/json"
	"net/http"
	"testing"
)

type fieldResult struct {
	Field string `json:"field"`
	Valid bool   `json:"valid"`
}

func fieldValid(t *testing.T, fields []fieldResult, name string) bool {
	t.Helper()
	for _, f := range fields {
		if f.Field == name {
			return f.Valid
		}
	}
	t.Fatalf("no result for field %q", name)
	return false
}

func TestRegisterValidUser(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	w := ts.POST("/users", map[string]string{
		"name":  "Åse Lund",
		"phone": "12345678",
		"email": "aase@example.no",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var count int
	if err := ts.DB.Get(&count, `SELECT COUNT(*) FROM users WHERE name = 'Åse Lund'`); err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if count != 1 {
		t.Errorf("expected user row, found %d", count)
	}
}

func TestRegisterReportsEachField(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	// Non-digit in an 8-char phone: phone fails, the others pass, and every
	// field still reports its own verdict.
	w := ts.POST("/users", map[string]string{
		"name":  "Åse Lund",
		"phone": "1234567A",
		"email": "aase@example.no",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}

	var resp struct {
		Code   string        `json:"code"`
		Fields []fieldResult `json:"fields"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "VALIDATION_FAILED" {
		t.Errorf("expected code VALIDATION_FAILED, got %s", resp.Code)
	}
	if !fieldValid(t, resp.Fields, "name") || fieldValid(t, resp.Fields, "phone") || !fieldValid(t, resp.Fields, "email") {
		t.Errorf("unexpected field verdicts: %+v", resp.Fields)
	}

	var count int
	if err := ts.DB.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if count != 0 {
		t.Errorf("invalid registration must not insert, found %d rows", count)
	}
}

func TestRegisterRejectsDigitsInName(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	w := ts.POST("/users", map[string]string{
		"name":  "Åse123",
		"phone": "12345678",
		"email": "aase@example.no",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
}

func TestUsersListingFilters(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "Kari Nordmann")
	ts.CreateTestUser(t, "Ola Hansen")

	w := ts.GET("/users?name=kar")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var users []struct {
		Name string `json:"name"`
	}
	json.Unmarshal(w.Body.Bytes(), &users)
	if len(users) != 1 || users[0].Name != "Kari Nordmann" {
		t.Errorf("expected only Kari Nordmann, got %+v", users)
	}

	// A user registered after the listing was first served shows up without
	// any restart.
	ts.CreateTestUser(t, "Karin Berg")
	w = ts.GET("/users?name=kar")
	users = nil
	json.Unmarshal(w.Body.Bytes(), &users)
	if len(users) != 2 {
		t.Errorf("expected both matches, got %+v", users)
	}
}

func TestStationAvailabilityToggle(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestStation(t, "Festplassen", 10, 3)
	ts.CreateTestStation(t, "Tomme Plassen", 0, 0)

	var resp struct {
		Percent int `json:"percent"`
	}

	w := ts.GET("/stations/availability?station=Festplassen&inProgress=true")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Percent != 30 {
		t.Errorf("in progress: expected 30, got %d", resp.Percent)
	}

	w = ts.GET("/stations/availability?station=Festplassen&inProgress=false")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Percent != 70 {
		t.Errorf("not in progress: expected 70, got %d", resp.Percent)
	}

	w = ts.GET("/stations/availability?station=Tomme+Plassen")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Percent != 0 {
		t.Errorf("zero capacity: expected 0, got %d", resp.Percent)
	}

	w = ts.GET("/stations/availability?station=Ukjent")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown station: expected %d, got %d", http.StatusNotFound, w.Code)
	}
}
