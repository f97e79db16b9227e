package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bergenbysykkel/fleet-backend/user"
)

var ErrNoRecentDropoff = errors.New("no recent dropoff for user")

var reportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "fleet_maintenance_reports_total",
	Help: "Maintenance complaint rows recorded",
})

func RegisterMetrics(reg *prometheus.Registry) {
	reg.MustRegister(reportsTotal)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Report records complaints against the bike of the user's most recently
// completed trip. Duplicate complaint strings collapse to one row; every row
// of a report shares the same timestamp. An empty set is a no-op.
func (r *Repository) Report(ctx context.Context, userName string, complaints []string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var userID int64
	err = tx.GetContext(ctx, &userID, resolveUser, userName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, user.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var bikeID int64
	err = tx.GetContext(ctx, &bikeID, lastDroppedBike, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoRecentDropoff
	}
	if err != nil {
		return 0, err
	}

	distinct := dedup(complaints)
	if len(distinct) == 0 {
		return 0, nil
	}

	reportedAt := time.Now().UTC()
	for _, complaint := range distinct {
		if _, err := tx.ExecContext(ctx, insertReport, bikeID, reportedAt, complaint); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	reportsTotal.Add(float64(len(distinct)))
	return len(distinct), nil
}

const resolveUser = `SELECT id FROM users WHERE name = $1`

const lastDroppedBike = `
SELECT bike_id FROM trips
WHERE user_id = $1 AND end_time IS NOT NULL
ORDER BY end_time DESC
LIMIT 1
`

const insertReport = `
INSERT INTO maintenance_reports (bike_id, reported_at, complaint)
VALUES ($1, $2, $3)
`

func dedup(complaints []string) []string {
	seen := make(map[string]struct{}, len(complaints))
	out := make([]string, 0, len(complaints))
	for _, c := range complaints {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (r *Repository) GetByBike(ctx context.Context, bikeID int64) ([]Report, error) {
	var reports []Report
	err := r.db.SelectContext(ctx, &reports, getByBike, bikeID)
	return reports, err
}

const getByBike = `SELECT * FROM maintenance_reports WHERE bike_id = $1 ORDER BY reported_at DESC, id`
