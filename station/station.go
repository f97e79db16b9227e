package station

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Station is a docking station. AvailableSpots counts free docks and is kept
// within [0, MaxSpots] by the trip lifecycle.
type Station struct {
	ID             int64
	Name           string
	Location       pgtype.Point
	MaxSpots       int `db:"max_spots"`
	AvailableSpots int `db:"available_spots"`
}
