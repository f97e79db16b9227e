// Package seed imports the source system's flat trip export. Each entity is
// cut out of the wide CSV by its own column set, rows with a missing value
// are dropped, and duplicates by the full mapped tuple collapse to one row
// before insert. Inserts keep the source ids, so re-running against a
// populated store fails on primary-key collision instead of duplicating.
package seed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

type UserRow struct {
	ID    int64
	Name  string
	Phone string
}

type SubscriptionRow struct {
	ID     int64
	UserID int64
	Type   string
	Start  time.Time
}

type StationRow struct {
	ID             int64
	Name           string
	Latitude       float64
	Longitude      float64
	MaxSpots       int
	AvailableSpots int
}

type BikeRow struct {
	ID        int64
	Name      string
	Status    string
	StationID int64
}

type TripRow struct {
	ID             int64
	UserID         int64
	BikeID         int64
	StartTime      time.Time
	EndTime        time.Time
	StartStationID int64
	EndStationID   int64
}

type Dataset struct {
	Users         []UserRow
	Subscriptions []SubscriptionRow
	Stations      []StationRow
	Bikes         []BikeRow
	Trips         []TripRow
}

// Column sets per entity, in source-header terms. The station set pairing
// start_station ids with end_station geometry is inherited from the source
// export, which denormalizes both onto every trip row.
var (
	userCols         = []string{"user_id", "user_name", "user_phone_number"}
	subscriptionCols = []string{"subscription_id", "user_id", "subscription_type", "subscription_start_time"}
	stationCols      = []string{"start_station_id", "start_station_name", "end_station_latitude", "end_station_longitude", "end_station_max_spots", "end_station_available_spots"}
	bikeCols         = []string{"bike_id", "bike_name", "bike_status", "bike_station_id"}
	tripCols         = []string{"trip_id", "user_id", "bike_id", "trip_start_time", "trip_end_time", "start_station_id", "end_station_id"}
)

// Extract maps raw CSV records (header row first) onto the five entity sets.
func Extract(records [][]string) (Dataset, error) {
	if len(records) == 0 {
		return Dataset{}, fmt.Errorf("empty input")
	}

	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[strings.TrimSpace(name)] = i
	}

	var ds Dataset
	for _, tuple := range project(records[1:], idx, userCols) {
		row, err := userFromTuple(tuple)
		if err != nil {
			return Dataset{}, err
		}
		ds.Users = append(ds.Users, row)
	}
	for _, tuple := range project(records[1:], idx, subscriptionCols) {
		row, err := subscriptionFromTuple(tuple)
		if err != nil {
			return Dataset{}, err
		}
		ds.Subscriptions = append(ds.Subscriptions, row)
	}
	for _, tuple := range project(records[1:], idx, stationCols) {
		row, err := stationFromTuple(tuple)
		if err != nil {
			return Dataset{}, err
		}
		ds.Stations = append(ds.Stations, row)
	}
	for _, tuple := range project(records[1:], idx, bikeCols) {
		row, err := bikeFromTuple(tuple)
		if err != nil {
			return Dataset{}, err
		}
		ds.Bikes = append(ds.Bikes, row)
	}
	for _, tuple := range project(records[1:], idx, tripCols) {
		row, err := tripFromTuple(tuple)
		if err != nil {
			return Dataset{}, err
		}
		ds.Trips = append(ds.Trips, row)
	}
	return ds, nil
}

// project cuts the named columns out of every record, drops tuples with a
// missing value, and keeps the first occurrence of each distinct tuple.
func project(records [][]string, idx map[string]int, cols []string) [][]string {
	seen := make(map[string]struct{})
	var out [][]string

	for _, rec := range records {
		tuple := make([]string, 0, len(cols))
		complete := true
		for _, col := range cols {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				complete = false
				break
			}
			v := strings.TrimSpace(rec[i])
			if v == "" {
				complete = false
				break
			}
			tuple = append(tuple, v)
		}
		if !complete {
			continue
		}

		key := strings.Join(tuple, "\x1f")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tuple)
	}
	return out
}

func userFromTuple(t []string) (UserRow, error) {
	id, err := strconv.ParseInt(t[0], 10, 64)
	if err != nil {
		return UserRow{}, fmt.Errorf("user_id %q: %w", t[0], err)
	}
	return UserRow{ID: id, Name: t[1], Phone: t[2]}, nil
}

func subscriptionFromTuple(t []string) (SubscriptionRow, error) {
	id, err := strconv.ParseInt(t[0], 10, 64)
	if err != nil {
		return SubscriptionRow{}, fmt.Errorf("subscription_id %q: %w", t[0], err)
	}
	userID, err := strconv.ParseInt(t[1], 10, 64)
	if err != nil {
		return SubscriptionRow{}, fmt.Errorf("user_id %q: %w", t[1], err)
	}
	start, err := parseTime(t[3])
	if err != nil {
		return SubscriptionRow{}, err
	}
	return SubscriptionRow{ID: id, UserID: userID, Type: t[2], Start: start}, nil
}

func stationFromTuple(t []string) (StationRow, error) {
	id, err := strconv.ParseInt(t[0], 10, 64)
	if err != nil {
		return StationRow{}, fmt.Errorf("station_id %q: %w", t[0], err)
	}
	lat, err := strconv.ParseFloat(t[2], 64)
	if err != nil {
		return StationRow{}, fmt.Errorf("latitude %q: %w", t[2], err)
	}
	lng, err := strconv.ParseFloat(t[3], 64)
	if err != nil {
		return StationRow{}, fmt.Errorf("longitude %q: %w", t[3], err)
	}
	maxSpots, err := strconv.Atoi(t[4])
	if err != nil {
		return StationRow{}, fmt.Errorf("max_spots %q: %w", t[4], err)
	}
	available, err := strconv.Atoi(t[5])
	if err != nil {
		return StationRow{}, fmt.Errorf("available_spots %q: %w", t[5], err)
	}
	return StationRow{ID: id, Name: t[1], Latitude: lat, Longitude: lng, MaxSpots: maxSpots, AvailableSpots: available}, nil
}

func bikeFromTuple(t []string) (BikeRow, error) {
	id, err := strconv.ParseInt(t[0], 10, 64)
	if err != nil {
		return BikeRow{}, fmt.Errorf("bike_id %q: %w", t[0], err)
	}
	stationID, err := strconv.ParseInt(t[3], 10, 64)
	if err != nil {
		return BikeRow{}, fmt.Errorf("bike_station_id %q: %w", t[3], err)
	}
	return BikeRow{ID: id, Name: t[1], Status: strings.ToLower(t[2]), StationID: stationID}, nil
}

func tripFromTuple(t []string) (TripRow, error) {
	var ids [3]int64
	for i, col := range []int{0, 1, 2} {
		v, err := strconv.ParseInt(t[col], 10, 64)
		if err != nil {
			return TripRow{}, fmt.Errorf("%s %q: %w", tripCols[col], t[col], err)
		}
		ids[i] = v
	}
	start, err := parseTime(t[3])
	if err != nil {
		return TripRow{}, err
	}
	end, err := parseTime(t[4])
	if err != nil {
		return TripRow{}, err
	}
	startStation, err := strconv.ParseInt(t[5], 10, 64)
	if err != nil {
		return TripRow{}, fmt.Errorf("start_station_id %q: %w", t[5], err)
	}
	endStation, err := strconv.ParseInt(t[6], 10, 64)
	if err != nil {
		return TripRow{}, fmt.Errorf("end_station_id %q: %w", t[6], err)
	}
	return TripRow{
		ID: ids[0], UserID: ids[1], BikeID: ids[2],
		StartTime: start, EndTime: end,
		StartStationID: startStation, EndStationID: endStation,
	}, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", v)
}

// Insert appends the dataset in one transaction, in FK order. Ids come from
// the source, so the identity sequences are bumped past the imported range
// afterwards to keep them out of the way of API-created rows.
func Insert(ctx context.Context, db *sqlx.DB, ds Dataset) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range ds.Users {
		if _, err := tx.ExecContext(ctx, insertUser, u.ID, u.Name, u.Phone); err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID, err)
		}
	}
	for _, s := range ds.Stations {
		if _, err := tx.ExecContext(ctx, insertStation, s.ID, s.Name, s.Latitude, s.Longitude, s.MaxSpots, s.AvailableSpots); err != nil {
			return fmt.Errorf("insert station %d: %w", s.ID, err)
		}
	}
	for _, b := range ds.Bikes {
		if _, err := tx.ExecContext(ctx, insertBike, b.ID, b.Name, b.Status, b.StationID); err != nil {
			return fmt.Errorf("insert bike %d: %w", b.ID, err)
		}
	}
	for _, s := range ds.Subscriptions {
		if _, err := tx.ExecContext(ctx, insertSubscription, s.ID, s.UserID, s.Type, s.Start); err != nil {
			return fmt.Errorf("insert subscription %d: %w", s.ID, err)
		}
	}
	for _, t := range ds.Trips {
		if _, err := tx.ExecContext(ctx, insertTrip, t.ID, t.UserID, t.BikeID, t.StartTime, t.EndTime, t.StartStationID, t.EndStationID); err != nil {
			return fmt.Errorf("insert trip %d: %w", t.ID, err)
		}
	}

	for _, table := range []string{"users", "stations", "bikes", "subscriptions", "trips"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(bumpSequence, table, table)); err != nil {
			return fmt.Errorf("bump %s sequence: %w", table, err)
		}
	}

	return tx.Commit()
}

const insertUser = `INSERT INTO users (id, name, phone_number) VALUES ($1, $2, $3)`

const insertStation = `
INSERT INTO stations (id, name, location, max_spots, available_spots)
VALUES ($1, $2, point($3, $4), $5, $6)
`

const insertBike = `INSERT INTO bikes (id, name, status, station_id) VALUES ($1, $2, $3, $4)`

const insertSubscription = `INSERT INTO subscriptions (id, user_id, type, start_time) VALUES ($1, $2, $3, $4)`

const insertTrip = `
INSERT INTO trips (id, user_id, bike_id, start_time, end_time, start_station_id, end_station_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

const bumpSequence = `SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 0) + 1 FROM %s), false)`
