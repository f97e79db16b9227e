// Package bike
package bike

import (
	"github.com/goccy/go-json"
)

// Status is the lifecycle state of a bike. A parked bike sits in a dock at a
// station; an active bike is out on a trip and carries no station.
type Status int

const (
	Parked Status = iota
	Active
)

// Bike represents one bike in the fleet.
type Bike struct {
	ID int64
	// Name is the label painted on the frame (e.g. "Sykkel-101").
	Name   string
	Status Status
	// StationID is set iff the bike is parked.
	StationID *int64 `db:"station_id"`
}

func (s Status) String() string {
	return [...]string{"parked", "active"}[s]
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) Scan(i any) error {
	switch v := i.(type) {
	case string:
		switch v {
		case "parked":
			*s = Parked
			return nil
		case "active":
			*s = Active
			return nil
		}
	}
	panic("invalid scan type")
}
