package user

import (
	"database/sql"
)

// User is a registered rider. Email arrived after launch and is nullable on
// rows that predate the column.
type User struct {
	ID          int64
	Name        string
	PhoneNumber string         `db:"phone_number"`
	Email       sql.NullString `db:"email"`
}
