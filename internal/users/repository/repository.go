package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrBadRole    = errors.New("role does not exist")
)

// User is an account row joined with its role name. PasswordHash never leaves
// the service layer.
type User struct {
	ID           int64
	RoleID       int64
	RoleName     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UpdateFields carries the optional admin-editable fields; nil means keep.
type UpdateFields struct {
	FirstName *string
	LastName  *string
	Phone     *string
	RoleID    *int64
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `
	u.id, u.role_id, r.name, u.first_name, u.last_name,
	u.email, u.password_hash, u.phone, u.active, u.created_at, u.updated_at
`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.RoleID,
		&u.RoleName,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.Phone,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// List returns all accounts ordered by id.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN roles r ON r.id = u.role_id
		ORDER BY u.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1
	`, userID))
}

// Create inserts an active account. Duplicate emails map to ErrEmailTaken,
// unknown roles to ErrBadRole.
func (r *Repository) Create(ctx context.Context, firstName, lastName, email, passwordHash string, phone *string, roleID int64) (User, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (role_id, first_name, last_name, email, password_hash, phone, active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id
	`, roleID, firstName, lastName, email, passwordHash, phone).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return User{}, ErrEmailTaken
			case "23503":
				return User{}, ErrBadRole
			}
		}
		return User{}, err
	}
	return r.GetByID(ctx, id)
}

// Update applies the non-nil fields and returns the updated row.
func (r *Repository) Update(ctx context.Context, userID int64, fields UpdateFields) (User, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			phone      = COALESCE($4, phone),
			role_id    = COALESCE($5, role_id),
			updated_at = now()
		WHERE id = $1
	`, userID, fields.FirstName, fields.LastName, fields.Phone, fields.RoleID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return User{}, ErrBadRole
		}
		return User{}, err
	}
	if tag.RowsAffected() == 0 {
		return User{}, ErrNotFound
	}
	return r.GetByID(ctx, userID)
}

// SetActive flips the account's active flag.
func (r *Repository) SetActive(ctx context.Context, userID int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET active = $2, updated_at = now() WHERE id = $1
	`, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
