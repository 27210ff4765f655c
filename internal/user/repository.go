package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

var ErrEmailTaken = errors.New("email already registered")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, name, email, role, phone, address, avatar_url, owned_hotel_id::text, created_at, updated_at, password_hash`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &u.Address, &u.AvatarURL, &u.OwnedHotelID,
		&u.CreatedAt, &u.UpdatedAt, &u.PasswordHash,
	); err != nil {
		return nil, db.NotFound(err)
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, in NewUser) (*User, error) {
	q := `
INSERT INTO users (name, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, q, in.Name, strings.ToLower(in.Email), in.PasswordHash, string(in.Role)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRow(ctx, q, strings.TrimSpace(email)))
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateProfile(ctx context.Context, id string, p Profile) (*User, error) {
	q := `
UPDATE users
SET name = COALESCE($2, name),
    phone = COALESCE($3, phone),
    address = COALESCE($4, address),
    avatar_url = COALESCE($5, avatar_url),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, q, id, p.Name, p.Phone, p.Address, p.AvatarURL))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// LoadPrincipal satisfies api.PrincipalLoader.
func (r *Repository) LoadPrincipal(ctx context.Context, id string) (*api.Principal, error) {
	const q = `SELECT id, name, email, role FROM users WHERE id = $1`
	var p api.Principal
	if err := r.db.QueryRow(ctx, q, id).Scan(&p.UserID, &p.Name, &p.Email, &p.Role); err != nil {
		return nil, db.NotFound(err)
	}
	return &p, nil
}

// Promote makes the user a hotelier of hotelID. Admins keep their role.
func Promote(ctx context.Context, tx pgx.Tx, userID, hotelID string) error {
	const q = `
UPDATE users
SET role = CASE WHEN role = $3 THEN role ELSE $2 END,
    owned_hotel_id = $4,
    updated_at = NOW()
WHERE id = $1
`
	tag, err := tx.Exec(ctx, q, userID, string(role.Hotelier), string(role.Admin), hotelID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// AddApplication appends a booking to the user's applications list.
func AddApplication(ctx context.Context, tx pgx.Tx, userID, bookingID string) error {
	const q = `
INSERT INTO user_booking_applications (user_id, booking_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`
	_, err := tx.Exec(ctx, q, userID, bookingID)
	return err
}

// AddRequest appends an availability request to the user's request list.
func AddRequest(ctx context.Context, tx pgx.Tx, userID, requestID string) error {
	const q = `
INSERT INTO user_availability_requests (user_id, request_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`
	_, err := tx.Exec(ctx, q, userID, requestID)
	return err
}
