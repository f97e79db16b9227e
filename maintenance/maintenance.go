// Package maintenance is an append-only log of rider complaints about a
// bike's condition. Reports never transition the bike; a mechanic triages
// them out of band.
package maintenance

import (
	"time"
)

type Report struct {
	ID         int64
	BikeID     int64     `db:"bike_id"`
	ReportedAt time.Time `db:"reported_at"`
	Complaint  string
}
