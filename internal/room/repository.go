package room

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

type Room struct {
	ID          string          `json:"id"`
	HotelID     string          `json:"hotelId"`
	Type        string          `json:"type"`
	Count       int             `json:"count"`
	Price       decimal.Decimal `json:"price"`
	MaxGuests   int             `json:"maxGuests"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type Input struct {
	HotelID     string           `json:"hotelId" validate:"required,uuid"`
	Type        string           `json:"type" validate:"required,max=60"`
	Count       int              `json:"count" validate:"min=0"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	MaxGuests   int              `json:"maxGuests" validate:"required,min=1"`
	Description string           `json:"description"`
	Images      []string         `json:"images" validate:"omitempty,dive,url"`
}

type Changes struct {
	Type        *string          `json:"type" validate:"omitempty,min=1,max=60"`
	Count       *int             `json:"count" validate:"omitempty,min=0"`
	Price       *decimal.Decimal `json:"price"`
	MaxGuests   *int             `json:"maxGuests" validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	Images      []string         `json:"images" validate:"omitempty,dive,url"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const roomColumns = `id, hotel_id, type, count, price, max_guests, description, images, created_at, updated_at`

func scanRoom(row pgx.Row) (*Room, error) {
	var rm Room
	if err := row.Scan(
		&rm.ID, &rm.HotelID, &rm.Type, &rm.Count, &rm.Price, &rm.MaxGuests, &rm.Description, &rm.Images,
		&rm.CreatedAt, &rm.UpdatedAt,
	); err != nil {
		return nil, db.NotFound(err)
	}
	return &rm, nil
}

func (r *Repository) Create(ctx context.Context, in Input) (*Room, error) {
	images := in.Images
	if images == nil {
		images = []string{}
	}
	q := `
INSERT INTO rooms (hotel_id, type, count, price, max_guests, description, images)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + roomColumns
	return scanRoom(r.db.QueryRow(ctx, q, in.HotelID, in.Type, in.Count, *in.Price, in.MaxGuests, in.Description, images))
}

func (r *Repository) Get(ctx context.Context, id string) (*Room, error) {
	return scanRoom(r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
}

func (r *Repository) ListByHotel(ctx context.Context, hotelID string) ([]Room, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roomColumns+` FROM rooms WHERE hotel_id = $1 ORDER BY price ASC, created_at ASC`, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id string, c Changes) (*Room, error) {
	q := `
UPDATE rooms
SET type = COALESCE($2, type),
    count = COALESCE($3, count),
    price = COALESCE($4, price),
    max_guests = COALESCE($5, max_guests),
    description = COALESCE($6, description),
    images = COALESCE($7, images),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + roomColumns
	return scanRoom(r.db.QueryRow(ctx, q, id, c.Type, c.Count, c.Price, c.MaxGuests, c.Description, c.Images))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
