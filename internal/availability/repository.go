package availability

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
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

const requestColumns = `id, hotel_id, user_id, check_in, check_out, guests, rooms, criteria, status, responded_at, created_at`

const viewSelect = `
SELECT a.id, a.hotel_id, a.user_id, a.check_in, a.check_out, a.guests, a.rooms, a.criteria, a.status,
       a.responded_at, a.created_at, u.name, u.email, h.name, h.owner_id
FROM availability_requests a
JOIN users u ON u.id = a.user_id
JOIN hotels h ON h.id = a.hotel_id
`

func scanRequest(row pgx.Row) (*Request, error) {
	var a Request
	if err := row.Scan(
		&a.ID, &a.HotelID, &a.UserID, &a.CheckIn, &a.CheckOut, &a.Guests, &a.Rooms, &a.Criteria,
		&a.Status, &a.RespondedAt, &a.CreatedAt,
	); err != nil {
		return nil, db.NotFound(err)
	}
	return &a, nil
}

func scanView(row pgx.Row) (*View, error) {
	var v View
	if err := row.Scan(
		&v.ID, &v.HotelID, &v.UserID, &v.CheckIn, &v.CheckOut, &v.Guests, &v.Rooms, &v.Criteria,
		&v.Status, &v.RespondedAt, &v.CreatedAt, &v.User.Name, &v.User.Email, &v.Hotel.Name, &v.Hotel.OwnerID,
	); err != nil {
		return nil, db.NotFound(err)
	}
	v.User.ID = v.UserID
	v.Hotel.ID = v.HotelID
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

func (r *Repository) Create(ctx context.Context, in NewRequest) (*Request, error) {
	q := `
INSERT INTO availability_requests (hotel_id, user_id, check_in, check_out, guests, rooms, criteria, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + requestColumns
	a, err := scanRequest(r.db.QueryRow(ctx, q,
		in.HotelID, in.UserID, in.CheckIn, in.CheckOut, in.Guests, in.Rooms, in.Criteria, string(in.Status),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			if pgErr.ConstraintName == "availability_requests_user_id_fkey" {
				return nil, api.Invalid("unknown reference", "userId")
			}
			return nil, api.Invalid("unknown reference", "hotelId")
		}
		return nil, err
	}
	return a, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*View, error) {
	return scanView(r.db.QueryRow(ctx, viewSelect+`WHERE a.id = $1`, id))
}

func (r *Repository) ListByHotel(ctx context.Context, hotelID string) ([]View, error) {
	rows, err := r.db.Query(ctx, viewSelect+`WHERE a.hotel_id = $1 ORDER BY a.created_at DESC`, hotelID)
	if err != nil {
		return nil, err
	}
	return scanViews(rows)
}

// ListByUser returns the user's request list, which only holds approved requests.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]View, error) {
	q := viewSelect + `
JOIN user_availability_requests ur ON ur.request_id = a.id
WHERE ur.user_id = $1
ORDER BY ur.created_at DESC`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanViews(rows)
}

func (r *Repository) InTx(ctx context.Context, fn func(TxStore) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) GetForUpdate(ctx context.Context, id string) (*Request, error) {
	return scanRequest(t.tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM availability_requests WHERE id = $1 FOR UPDATE`, id))
}

func (t pgTx) SetStatus(ctx context.Context, id string, from, to workflow.Status) error {
	const q = `UPDATE availability_requests SET status = $3, responded_at = NOW() WHERE id = $1 AND status = $2`
	tag, err := t.tx.Exec(ctx, q, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &workflow.TransitionError{Entity: workflow.AvailabilityRequest.Entity, From: from, To: to}
	}
	return nil
}

func (t pgTx) AddRequest(ctx context.Context, userID, requestID string) error {
	return user.AddRequest(ctx, t.tx, userID, requestID)
}

func (t pgTx) RecordTransition(ctx context.Context, e audit.Entry) error {
	return audit.Insert(ctx, t.tx, e)
}
