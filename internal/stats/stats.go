// Package stats serves the public platform counters shown on the dashboard.
package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"alerthub_backend/platform/apperr"
)

// Summary aggregates the headline platform numbers.
type Summary struct {
	Citizens       int64 `json:"citizens"`
	TotalAlerts    int64 `json:"totalAlerts"`
	AttendedAlerts int64 `json:"attendedAlerts"`
	PendingAlerts  int64 `json:"pendingAlerts"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Summary computes the counters in one round trip. Deleted alerts are
// excluded everywhere; pending means still in the received status.
func (r *Repository) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM users u JOIN roles ro ON ro.id = u.role_id
				WHERE ro.name = 'citizen' AND u.active),
			(SELECT count(*) FROM alerts WHERE deleted_at IS NULL),
			(SELECT count(*) FROM alerts WHERE deleted_at IS NULL AND status = 'attended'),
			(SELECT count(*) FROM alerts WHERE deleted_at IS NULL AND status = 'received')
	`).Scan(&s.Citizens, &s.TotalAlerts, &s.AttendedAlerts, &s.PendingAlerts)
	if err != nil {
		return Summary{}, apperr.Wrap(apperr.KindInternal, "could not compute platform stats", err)
	}
	return s, nil
}
