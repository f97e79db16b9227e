// Package trip owns the checkout/dropoff lifecycle. A bike and rider pair is
// idle when no open trip exists for them and checked out while a trip row
// with a null end_time is present.
package trip

import (
	"database/sql"
	"time"
)

type Trip struct {
	ID             int64
	UserID         int64         `db:"user_id"`
	BikeID         int64         `db:"bike_id"`
	StartTime      time.Time     `db:"start_time"`
	EndTime        sql.NullTime  `db:"end_time"`
	StartStationID int64         `db:"start_station_id"`
	EndStationID   sql.NullInt64 `db:"end_station_id"`
}

// Receipt is what an operator needs back after a checkout or dropoff.
type Receipt struct {
	TripID      int64
	UserID      int64
	BikeID      int64
	BikeName    string
	StationID   int64
	StationName string
}

// StationTripCount is one row of the trips-per-end-station aggregate.
type StationTripCount struct {
	StationID int64  `db:"station_id"`
	Name      string `db:"name"`
	Trips     int    `db:"trips"`
}
