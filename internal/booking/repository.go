package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/pricing"
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

const bookingColumns = `id, hotel_id, user_id, check_in, check_out, guests, total_price, special_requests,
payment_status, payment_ref, created_at`

// viewSelect populates user, hotel and rooms in one round trip.
const viewSelect = `
SELECT b.id, b.hotel_id, b.user_id, b.check_in, b.check_out, b.guests, b.total_price, b.special_requests,
       b.payment_status, b.payment_ref, b.created_at,
       u.name, u.email, h.name, h.owner_id,
       COALESCE((
           SELECT json_agg(json_build_object('id', r.id, 'type', r.type, 'price', r.price::text) ORDER BY br.position)
           FROM booking_rooms br
           JOIN rooms r ON r.id = br.room_id
           WHERE br.booking_id = b.id
       ), '[]'::json) AS rooms
FROM bookings b
JOIN users u ON u.id = b.user_id
JOIN hotels h ON h.id = b.hotel_id
`

func scanView(row pgx.Row) (*View, error) {
	var v View
	var rooms []byte
	if err := row.Scan(
		&v.ID, &v.HotelID, &v.UserID, &v.CheckIn, &v.CheckOut, &v.Guests, &v.TotalPrice, &v.SpecialRequests,
		&v.PaymentStatus, &v.PaymentRef, &v.CreatedAt,
		&v.User.Name, &v.User.Email, &v.Hotel.Name, &v.Hotel.OwnerID, &rooms,
	); err != nil {
		return nil, db.NotFound(err)
	}
	v.User.ID = v.UserID
	v.Hotel.ID = v.HotelID
	if err := json.Unmarshal(rooms, &v.Rooms); err != nil {
		return nil, fmt.Errorf("decode booking rooms: %w", err)
	}
	v.RoomIDs = make([]string, len(v.Rooms))
	for i, r := range v.Rooms {
		v.RoomIDs[i] = r.ID
	}
	return &v, nil
}

func scanViews(rows pgx.Rows) ([]View, error) {
	defer rows.Close()
	out := []View{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*View, error) {
	return scanView(r.db.QueryRow(ctx, viewSelect+`WHERE b.id = $1`, id))
}

func (r *Repository) List(ctx context.Context, offset, limit int) ([]View, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, viewSelect+`ORDER BY b.created_at DESC, b.id DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	items, err := scanViews(rows)
	return items, total, err
}

func (r *Repository) ListAll(ctx context.Context) ([]View, error) {
	rows, err := r.db.Query(ctx, viewSelect+`ORDER BY b.created_at DESC, b.id DESC`)
	if err != nil {
		return nil, err
	}
	return scanViews(rows)
}

// ListByUser walks the user's applications list.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]View, error) {
	q := viewSelect + `
JOIN user_booking_applications a ON a.booking_id = b.id
WHERE a.user_id = $1
ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanViews(rows)
}

func (r *Repository) ListByHotel(ctx context.Context, hotelID string) ([]View, error) {
	rows, err := r.db.Query(ctx, viewSelect+`WHERE b.hotel_id = $1 ORDER BY b.created_at DESC, b.id DESC`, hotelID)
	if err != nil {
		return nil, err
	}
	return scanViews(rows)
}

// RoomRates returns the rooms of hotelID among roomIDs, in request order.
func (r *Repository) RoomRates(ctx context.Context, hotelID string, roomIDs []string) ([]pricing.RoomRate, error) {
	const q = `
SELECT r.id, r.type, r.price
FROM unnest($2::text[]) WITH ORDINALITY AS req(id, pos)
JOIN rooms r ON r.id = req.id::uuid AND r.hotel_id = $1
ORDER BY req.pos
`
	rows, err := r.db.Query(ctx, q, hotelID, roomIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []pricing.RoomRate{}
	for rows.Next() {
		var rr pricing.RoomRate
		if err := rows.Scan(&rr.RoomID, &rr.Type, &rr.Price); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *Repository) InTx(ctx context.Context, fn func(TxStore) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.HotelID, &b.UserID, &b.CheckIn, &b.CheckOut, &b.Guests, &b.TotalPrice, &b.SpecialRequests,
		&b.PaymentStatus, &b.PaymentRef, &b.CreatedAt,
	); err != nil {
		return nil, db.NotFound(err)
	}
	return &b, nil
}

func (t pgTx) Insert(ctx context.Context, in NewBooking) (*Booking, error) {
	q := `
INSERT INTO bookings (hotel_id, user_id, check_in, check_out, guests, total_price, special_requests, payment_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + bookingColumns
	b, err := scanBooking(t.tx.QueryRow(ctx, q,
		in.HotelID, in.UserID, in.CheckIn, in.CheckOut, in.Guests, in.TotalPrice, in.SpecialRequests,
		string(workflow.StatusPending),
	))
	if err != nil {
		return nil, foreignKey(err)
	}

	// A room id may repeat: each entry is one unit of that room type.
	for i, roomID := range in.RoomIDs {
		const qRoom = `INSERT INTO booking_rooms (booking_id, room_id, position) VALUES ($1, $2, $3)`
		if _, err := t.tx.Exec(ctx, qRoom, b.ID, roomID, i); err != nil {
			return nil, foreignKey(err)
		}
	}
	b.RoomIDs = in.RoomIDs
	return b, nil
}

// foreignKey turns a dangling reference into a validation error naming the field.
func foreignKey(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23503" {
		return err
	}
	switch pgErr.ConstraintName {
	case "bookings_hotel_id_fkey":
		return api.Invalid("unknown reference", "hotelId")
	case "bookings_user_id_fkey":
		return api.Invalid("unknown reference", "userId")
	default:
		return api.Invalid("unknown reference", "roomIds")
	}
}

func (t pgTx) AddApplication(ctx context.Context, userID, bookingID string) error {
	return user.AddApplication(ctx, t.tx, userID, bookingID)
}

func (t pgTx) GetForUpdate(ctx context.Context, id string) (*Booking, error) {
	return scanBooking(t.tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
}

func (t pgTx) GetByPaymentRefForUpdate(ctx context.Context, ref string) (*Booking, error) {
	return scanBooking(t.tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE payment_ref = $1 FOR UPDATE`, ref))
}

func (t pgTx) SetPaymentRef(ctx context.Context, id, ref string) error {
	_, err := t.tx.Exec(ctx, `UPDATE bookings SET payment_ref = $2, updated_at = NOW() WHERE id = $1`, id, ref)
	return err
}

// SetPaymentStatus is a compare-and-swap on payment_status.
func (t pgTx) SetPaymentStatus(ctx context.Context, id string, from, to workflow.Status) error {
	const q = `UPDATE bookings SET payment_status = $3, updated_at = NOW() WHERE id = $1 AND payment_status = $2`
	tag, err := t.tx.Exec(ctx, q, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.TransitionError{Entity: workflow.Payment.Entity, From: from, To: to}
	}
	return nil
}

func (t pgTx) RecordTransition(ctx context.Context, e audit.Entry) error {
	return audit.Insert(ctx, t.tx, e)
}
