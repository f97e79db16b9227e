package subscription

import (
	"time"
)

// Subscription is reference data seeded from the source system; nothing in
// the lifecycle mutates it.
type Subscription struct {
	ID     int64
	UserID int64     `db:"user_id"`
	Type   string
	Start  time.Time `db:"start_time"`
}

// TypeCount is one row of the purchases-per-type aggregate.
type TypeCount struct {
	Type      string `db:"type"`
	Purchased int    `db:"purchased"`
}
