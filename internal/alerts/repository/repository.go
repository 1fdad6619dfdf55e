package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// Alert statuses. An alert starts as received; community board staff move it
// through review to attended or dismissed.
const (
	StatusReceived  = "received"
	StatusInReview  = "in_review"
	StatusAttended  = "attended"
	StatusDismissed = "dismissed"
)

// ValidStatus reports whether value is a known alert status.
func ValidStatus(value string) bool {
	switch value {
	case StatusReceived, StatusInReview, StatusAttended, StatusDismissed:
		return true
	}
	return false
}

// Alert is one citizen incident report.
type Alert struct {
	ID           int64
	UserID       int64
	Status       string
	Title        string
	Description  string
	Category     string
	Location     *string
	Priority     *string
	EvidenceKey  *string
	EvidenceType *string
	HintLat      *float64
	HintLon      *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateFields carries the insert values for a new alert.
type CreateFields struct {
	UserID       int64
	Title        string
	Description  string
	Category     string
	Location     *string
	Priority     *string
	EvidenceKey  *string
	EvidenceType *string
	HintLat      *float64
	HintLon      *float64
}

// UpdateFields carries the patchable values; nil means keep.
type UpdateFields struct {
	Title        *string
	Description  *string
	Category     *string
	Location     *string
	Priority     *string
	EvidenceKey  *string
	EvidenceType *string
	HintLat      *float64
	HintLon      *float64
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const alertColumns = `
	id, user_id, status, title, description, category, location, priority,
	evidence_key, evidence_type, hint_lat, hint_lon,
	created_at, updated_at
`

func scanAlert(row pgx.Row) (Alert, error) {
	var a Alert
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Status,
		&a.Title,
		&a.Description,
		&a.Category,
		&a.Location,
		&a.Priority,
		&a.EvidenceKey,
		&a.EvidenceType,
		&a.HintLat,
		&a.HintLon,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Alert{}, ErrNotFound
	}
	return a, err
}

// Create inserts an alert in the received status.
func (r *Repository) Create(ctx context.Context, fields CreateFields) (Alert, error) {
	return scanAlert(r.pool.QueryRow(ctx, `
		INSERT INTO alerts (
			user_id, status, title, description, category, location, priority,
			evidence_key, evidence_type, hint_lat, hint_lon
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+alertColumns+`
	`,
		fields.UserID,
		StatusReceived,
		fields.Title,
		fields.Description,
		fields.Category,
		fields.Location,
		fields.Priority,
		fields.EvidenceKey,
		fields.EvidenceType,
		fields.HintLat,
		fields.HintLon,
	))
}

// List returns all non-deleted alerts, newest first.
func (r *Repository) List(ctx context.Context) ([]Alert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, alertID int64) (Alert, error) {
	return scanAlert(r.pool.QueryRow(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE id = $1 AND deleted_at IS NULL
	`, alertID))
}

// Update applies the non-nil fields and returns the updated row.
func (r *Repository) Update(ctx context.Context, alertID int64, fields UpdateFields) (Alert, error) {
	return scanAlert(r.pool.QueryRow(ctx, `
		UPDATE alerts SET
			title         = COALESCE($2, title),
			description   = COALESCE($3, description),
			category      = COALESCE($4, category),
			location      = COALESCE($5, location),
			priority      = COALESCE($6, priority),
			evidence_key  = COALESCE($7, evidence_key),
			evidence_type = COALESCE($8, evidence_type),
			hint_lat      = COALESCE($9, hint_lat),
			hint_lon      = COALESCE($10, hint_lon),
			updated_at    = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+alertColumns+`
	`,
		alertID,
		fields.Title,
		fields.Description,
		fields.Category,
		fields.Location,
		fields.Priority,
		fields.EvidenceKey,
		fields.EvidenceType,
		fields.HintLat,
		fields.HintLon,
	))
}

// SetStatus moves the alert to a new status.
func (r *Repository) SetStatus(ctx context.Context, alertID int64, status string) (Alert, error) {
	return scanAlert(r.pool.QueryRow(ctx, `
		UPDATE alerts SET status = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+alertColumns+`
	`, alertID, status))
}
