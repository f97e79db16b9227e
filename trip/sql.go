package trip

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	"github.com/bergenbysykkel/fleet-backend/bike"
	"github.com/bergenbysykkel/fleet-backend/station"
	"github.com/bergenbysykkel/fleet-backend/user"
)

var (
	ErrEmptyName    = errors.New("user and station names are required")
	ErrNoActiveTrip = errors.New("no active trip for user")
)

var (
	checkoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_checkouts_total",
		Help: "Completed bike checkouts",
	})
	dropoffsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_dropoffs_total",
		Help: "Completed bike dropoffs",
	})
)

func RegisterMetrics(reg *prometheus.Registry) {
	reg.MustRegister(checkoutsTotal, dropoffsTotal)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// Checkout hands a parked bike at the named station to the named user. The
// trip insert, bike transition and spot decrement commit together or not at
// all. The station row is locked first, which serializes checkouts per
// station so two concurrent callers can never take the same bike.
func (r *Repository) Checkout(ctx context.Context, userName, stationName string) (Receipt, error) {
	ctx, span := otel.Tracer("trip").Start(ctx, "Checkout")
	defer span.End()

	if userName == "" || stationName == "" {
		return Receipt{}, ErrEmptyName
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Receipt{}, err
	}
	defer tx.Rollback()

	var stationID int64
	err = tx.GetContext(ctx, &stationID, lockStation, stationName)
	if errors.Is(err, sql.ErrNoRows) {
		return Receipt{}, station.ErrNotFound
	}
	if err != nil {
		return Receipt{}, err
	}

	var userID int64
	err = tx.GetContext(ctx, &userID, resolveUser, userName)
	if errors.Is(err, sql.ErrNoRows) {
		return Receipt{}, user.ErrNotFound
	}
	if err != nil {
		return Receipt{}, err
	}

	var b struct {
		ID   int64
		Name string
	}
	err = tx.GetContext(ctx, &b, nextParkedBike, stationID)
	if errors.Is(err, sql.ErrNoRows) {
		return Receipt{}, bike.ErrNoneAvailable
	}
	if err != nil {
		return Receipt{}, err
	}

	var tripID int64
	err = tx.GetContext(ctx, &tripID, insertTrip, userID, b.ID, stationID)
	if err != nil {
		return Receipt{}, err
	}

	if _, err = tx.ExecContext(ctx, activateBike, b.ID); err != nil {
		return Receipt{}, err
	}
	if _, err = tx.ExecContext(ctx, takeSpot, stationID); err != nil {
		return Receipt{}, err
	}

	if err = tx.Commit(); err != nil {
		return Receipt{}, err
	}

	checkoutsTotal.Inc()
	return Receipt{
		TripID:      tripID,
		UserID:      userID,
		BikeID:      b.ID,
		BikeName:    b.Name,
		StationID:   stationID,
		StationName: stationName,
	}, nil
}

const lockStation = `SELECT id FROM stations WHERE name = $1 FOR UPDATE`

const resolveUser = `SELECT id FROM users WHERE name = $1`

// Lowest id wins, and the row lock keeps a concurrent checkout from picking
// the same bike before this transaction commits.
const nextParkedBike = `
SELECT id, name FROM bikes
WHERE station_id = $1 AND status = 'parked'
ORDER BY id
LIMIT 1
FOR UPDATE
`

const insertTrip = `
INSERT INTO trips (user_id, bike_id, start_time, start_station_id)
VALUES ($1, $2, now(), $3)
RETURNING id
`

const activateBike = `UPDATE bikes SET status = 'active', station_id = NULL WHERE id = $1`

const takeSpot = `UPDATE stations SET available_spots = GREATEST(available_spots - 1, 0) WHERE id = $1`

// Dropoff closes the user's most recent open trip at the named station and
// parks the bike there. Lock order matches Checkout: station first, then the
// bike row, so the two operations cannot deadlock each other.
func (r *Repository) Dropoff(ctx context.Context, userName, stationName string) (Receipt, error) {
	ctx, span := otel.Tracer("trip").Start(ctx, "Dropoff")
	defer span.End()

	if userName == "" || stationName == "" {
		return Receipt{}, ErrEmptyName
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Receipt{}, err
	}
	defer tx.Rollback()

	var stationID int64
	err = tx.GetContext(ctx, &stationID, lockStation, stationName)
	if errors.Is(err, sql.ErrNoRows) {
		return Receipt{}, station.ErrNotFound
	}
	if err != nil {
		return Receipt{}, err
	}

	var userID int64
	err = tx.GetContext(ctx, &userID, resolveUser, userName)
	if errors.Is(err, sql.ErrNoRows) {
		return Receipt{}, user.ErrNotFound
	}
	if err != nil {
		return Receipt{}, err
	}

	var open struct {
		ID     int64
		BikeID int64 `db:"bike_id"`
	}
	err = tx.GetContext(ctx, &open, newestOpenTrip, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Receipt{}, ErrNoActiveTrip
	}
	if err != nil {
		return Receipt{}, err
	}

	var bikeName string
	err = tx.GetContext(ctx, &bikeName, lockBike, open.BikeID)
	if err != nil {
		return Receipt{}, err
	}

	if _, err = tx.ExecContext(ctx, closeTrip, stationID, open.ID); err != nil {
		return Receipt{}, err
	}
	if _, err = tx.ExecContext(ctx, parkBike, stationID, open.BikeID); err != nil {
		return Receipt{}, err
	}
	if _, err = tx.ExecContext(ctx, freeSpot, stationID); err != nil {
		return Receipt{}, err
	}

	if err = tx.Commit(); err != nil {
		return Receipt{}, err
	}

	dropoffsTotal.Inc()
	return Receipt{
		TripID:      open.ID,
		UserID:      userID,
		BikeID:      open.BikeID,
		BikeName:    bikeName,
		StationID:   stationID,
		StationName: stationName,
	}, nil
}

const newestOpenTrip = `
SELECT id, bike_id FROM trips
WHERE user_id = $1 AND end_time IS NULL
ORDER BY start_time DESC
LIMIT 1
FOR UPDATE
`

const lockBike = `SELECT name FROM bikes WHERE id = $1 FOR UPDATE`

const closeTrip = `UPDATE trips SET end_time = now(), end_station_id = $1 WHERE id = $2`

const parkBike = `UPDATE bikes SET status = 'parked', station_id = $1 WHERE id = $2`

const freeSpot = `UPDATE stations SET available_spots = LEAST(available_spots + 1, max_spots) WHERE id = $1`

func (r *Repository) CountByEndStation(ctx context.Context) ([]StationTripCount, error) {
	var counts []StationTripCount
	err := r.db.SelectContext(ctx, &counts, countByEndStation)
	return counts, err
}

const countByEndStation = `
SELECT s.id AS station_id, s.name AS name, COUNT(t.id) AS trips
FROM trips t
JOIN stations s ON t.end_station_id = s.id
GROUP BY s.id, s.name
ORDER BY s.id
`
