// Package roles exposes the role catalog.
package roles

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"alerthub_backend/platform/apperr"
)

// Role is one entry of the role catalog.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all roles ordered by id.
func (r *Repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list roles", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan role", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list roles", err)
	}
	if roles == nil {
		roles = []Role{}
	}
	return roles, nil
}
