package bike

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("bike not found")
	ErrNoneAvailable = errors.New("no available bikes at this station")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBikes(ctx context.Context) ([]Bike, error) {
	var bikes []Bike
	err := r.db.SelectContext(ctx, &bikes, getBikes)
	return bikes, err
}

const getBikes = `SELECT * FROM bikes ORDER BY id`

func (r *Repository) GetBike(ctx context.Context, id int64) (Bike, error) {
	var b Bike
	err := r.db.GetContext(ctx, &b, getBike, id)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

const getBike = `SELECT * FROM bikes WHERE id = $1`

// FindParkedBike selects the parked bike the named station would hand out
// next. Lowest id wins so the choice is deterministic.
func (r *Repository) FindParkedBike(ctx context.Context, stationName string) (Bike, error) {
	var b Bike
	err := r.db.GetContext(ctx, &b, findParkedBike, stationName)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNoneAvailable
	}
	return b, err
}

const findParkedBike = `
SELECT b.* FROM bikes b
JOIN stations s ON b.station_id = s.id
WHERE s.name = $1 AND b.status = 'parked'
ORDER BY b.id
LIMIT 1
`

func (r *Repository) MarkActive(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, markActive, id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

const markActive = `UPDATE bikes SET status = 'active', station_id = NULL WHERE id = $1`

func (r *Repository) MarkParked(ctx context.Context, id, stationID int64) error {
	res, err := r.db.ExecContext(ctx, markParked, stationID, id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

const markParked = `UPDATE bikes SET status = 'parked', station_id = $1 WHERE id = $2`

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ParkedBike is a row of the "available bikes by station" listing.
type ParkedBike struct {
	Station string `db:"station"`
	Bike    string `db:"bike"`
	Status  Status `db:"status"`
}

// GetParkedByStation lists parked bikes with their station. Both filters are
// optional substring matches applied in the query, not on the result set.
func (r *Repository) GetParkedByStation(ctx context.Context, stationFilter, bikeFilter string) ([]ParkedBike, error) {
	var rows []ParkedBike
	err := r.db.SelectContext(ctx, &rows, getParkedByStation, stationFilter, bikeFilter)
	return rows, err
}

const getParkedByStation = `
SELECT s.name AS station, b.name AS bike, b.status AS status
FROM bikes b
JOIN stations s ON b.station_id = s.id
WHERE b.status = 'parked'
  AND s.name ILIKE '%' || $1 || '%'
  AND b.name ILIKE '%' || $2 || '%'
ORDER BY s.name, b.id
`
