package hotel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/user"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const hotelColumns = `
id, owner_id, name, email, phone, address, city, description, room_types, prices, rooms_available,
amenities, documents, images, payment_options, status, reviewed_at, created_at, updated_at`

func scanHotel(row pgx.Row) (*Hotel, error) {
	var h Hotel
	var prices, rooms []byte
	if err := row.Scan(
		&h.ID, &h.OwnerID, &h.Name, &h.Email, &h.Phone, &h.Address, &h.City, &h.Description,
		&h.RoomTypes, &prices, &rooms, &h.Amenities, &h.Documents, &h.Images, &h.PaymentOptions,
		&h.Status, &h.ReviewedAt, &h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		return nil, db.NotFound(err)
	}
	if err := json.Unmarshal(prices, &h.Prices); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}
	if err := json.Unmarshal(rooms, &h.RoomsAvailable); err != nil {
		return nil, fmt.Errorf("decode rooms_available: %w", err)
	}
	return &h, nil
}

func scanHotels(rows pgx.Rows) ([]Hotel, error) {
	defer rows.Close()
	out := []Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

func jsonb(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	s := string(b)
	return &s, nil
}

func (r *Repository) Create(ctx context.Context, ownerID string, in Submission) (*Hotel, error) {
	prices, err := jsonb(in.Prices)
	if err != nil {
		return nil, err
	}
	rooms, err := jsonb(in.RoomsAvailable)
	if err != nil {
		return nil, err
	}
	q := `
INSERT INTO hotels (owner_id, name, email, phone, address, city, description, room_types, prices,
                    rooms_available, amenities, documents, images, payment_options, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CAST($9 AS jsonb), COALESCE(CAST($10 AS jsonb), '{}'::jsonb),
        $11, $12, $13, $14, $15)
RETURNING ` + hotelColumns
	return scanHotel(r.db.QueryRow(ctx, q,
		ownerID, in.Name, in.Email, in.Phone, in.Address, in.City, in.Description, nonNil(in.RoomTypes),
		prices, rooms, nonNil(in.Amenities), nonNil(in.Documents), nonNil(in.Images), nonNil(in.PaymentOptions),
		string(workflow.StatusPending),
	))
}

func (r *Repository) Get(ctx context.Context, id string) (*Hotel, error) {
	q := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1`
	return scanHotel(r.db.QueryRow(ctx, q, id))
}

// List returns hotels newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status *workflow.Status) ([]Hotel, error) {
	q := `SELECT ` + hotelColumns + ` FROM hotels WHERE ($1::text IS NULL OR status = $1) ORDER BY created_at DESC`
	var s *string
	if status != nil {
		v := string(*status)
		s = &v
	}
	rows, err := r.db.Query(ctx, q, s)
	if err != nil {
		return nil, err
	}
	return scanHotels(rows)
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]Hotel, error) {
	q := `SELECT ` + hotelColumns + ` FROM hotels WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return scanHotels(rows)
}

func (r *Repository) Update(ctx context.Context, id string, c Changes) (*Hotel, error) {
	prices, err := jsonb(c.Prices)
	if err != nil {
		return nil, err
	}
	rooms, err := jsonb(c.RoomsAvailable)
	if err != nil {
		return nil, err
	}
	q := `
UPDATE hotels
SET name = COALESCE($2, name),
    email = COALESCE($3, email),
    phone = COALESCE($4, phone),
    address = COALESCE($5, address),
    city = COALESCE($6, city),
    description = COALESCE($7, description),
    room_types = COALESCE($8, room_types),
    prices = COALESCE(CAST($9 AS jsonb), prices),
    rooms_available = COALESCE(CAST($10 AS jsonb), rooms_available),
    amenities = COALESCE($11, amenities),
    payment_options = COALESCE($12, payment_options),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + hotelColumns
	return scanHotel(r.db.QueryRow(ctx, q,
		id, c.Name, c.Email, c.Phone, c.Address, c.City, c.Description, c.RoomTypes,
		prices, rooms, c.Amenities, c.PaymentOptions,
	))
}

func (r *Repository) AddMedia(ctx context.Context, id string, m Media) (*Hotel, error) {
	col := "images"
	if m.Kind == MediaDocument {
		col = "documents"
	}
	q := `
UPDATE hotels
SET ` + col + ` = array_append(` + col + `, $2), updated_at = NOW()
WHERE id = $1
RETURNING ` + hotelColumns
	return scanHotel(r.db.QueryRow(ctx, q, id, m.URL))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM hotels WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// OwnerOf returns the owning user id. Used by the room, booking and
// availability packages for ownership checks.
func (r *Repository) OwnerOf(ctx context.Context, id string) (string, error) {
	var owner string
	if err := r.db.QueryRow(ctx, `SELECT owner_id FROM hotels WHERE id = $1`, id).Scan(&owner); err != nil {
		return "", db.NotFound(err)
	}
	return owner, nil
}

func (r *Repository) InTx(ctx context.Context, fn func(TxStore) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) GetForUpdate(ctx context.Context, id string) (*Hotel, error) {
	q := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1 FOR UPDATE`
	return scanHotel(t.tx.QueryRow(ctx, q, id))
}

// SetStatus is a compare-and-swap on the current status.
func (t pgTx) SetStatus(ctx context.Context, id string, from, to workflow.Status) error {
	const q = `
UPDATE hotels
SET status = $3, reviewed_at = NOW(), updated_at = NOW()
WHERE id = $1 AND status = $2
`
	tag, err := t.tx.Exec(ctx, q, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.TransitionError{Entity: workflow.Hotel.Entity, From: from, To: to}
	}
	return nil
}

func (t pgTx) PromoteOwner(ctx context.Context, ownerID, hotelID string) error {
	return user.Promote(ctx, t.tx, ownerID, hotelID)
}

func (t pgTx) RecordTransition(ctx context.Context, e audit.Entry) error {
	return audit.Insert(ctx, t.tx, e)
}
