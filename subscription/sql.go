package subscription

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CountByType(ctx context.Context) ([]TypeCount, error) {
	var counts []TypeCount
	err := r.db.SelectContext(ctx, &counts, countByType)
	return counts, err
}

const countByType = `
SELECT type, COUNT(*) AS purchased
FROM subscriptions
GROUP BY type
ORDER BY type
`
