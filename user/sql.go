package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("user not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// Register inserts a new user and returns its id. Validation happens at the
// API boundary; this only persists.
func (r *Repository) Register(ctx context.Context, name, phone, email string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, registerQuery, name, phone, email)
	return id, err
}

const registerQuery = `
INSERT INTO users (name, phone_number, email)
VALUES ($1, $2, NULLIF($3, ''))
RETURNING id
`

func (r *Repository) ResolveID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, resolveIDQuery, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

const resolveIDQuery = `SELECT id FROM users WHERE name = $1`

// GetUsers lists users, optionally narrowed by a case-insensitive name
// substring. The predicate lives in the query so new rows show up without
// any process-level cache.
func (r *Repository) GetUsers(ctx context.Context, nameFilter string) ([]User, error) {
	var users []User
	err := r.db.SelectContext(ctx, &users, getUsersQuery, nameFilter)
	return users, err
}

const getUsersQuery = `
SELECT * FROM users
WHERE name ILIKE '%' || $1 || '%'
ORDER BY id
`
