package stats

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
)

const recentTransitions = 20

// Summary backs the admin dashboard.
type Summary struct {
	UsersByRole       map[string]int  `json:"usersByRole"`
	HotelsByStatus    map[string]int  `json:"hotelsByStatus"`
	BookingsByPayment map[string]int  `json:"bookingsByPayment"`
	PendingRequests   int             `json:"pendingRequests"`
	PendingEvents     int             `json:"pendingEvents"`
	Contacts          int             `json:"contacts"`
	PaidRevenue       decimal.Decimal `json:"paidRevenue"`
	RecentTransitions []audit.Entry   `json:"recentTransitions"`
}

type Counter interface {
	Counts(ctx context.Context) (*Summary, error)
}

type History interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Counts(ctx context.Context) (*Summary, error) {
	s := &Summary{}
	var err error
	if s.UsersByRole, err = r.grouped(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`); err != nil {
		return nil, err
	}
	if s.HotelsByStatus, err = r.grouped(ctx, `SELECT status, COUNT(*) FROM hotels GROUP BY status`); err != nil {
		return nil, err
	}
	if s.BookingsByPayment, err = r.grouped(ctx, `SELECT payment_status, COUNT(*) FROM bookings GROUP BY payment_status`); err != nil {
		return nil, err
	}

	const q = `
SELECT
  (SELECT COUNT(*) FROM availability_requests WHERE status IN ('Pending', 'Completed')),
  (SELECT COUNT(*) FROM events WHERE status = 'Pending'),
  (SELECT COUNT(*) FROM contacts),
  (SELECT COALESCE(SUM(total_price), 0) FROM bookings WHERE payment_status = 'Paid')
`
	if err := r.db.QueryRow(ctx, q).Scan(&s.PendingRequests, &s.PendingEvents, &s.Contacts, &s.PaidRevenue); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) grouped(ctx context.Context, q string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, rows.Err()
}

type Handlers struct {
	Counts  Counter
	History History
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Counts.Counts(r.Context())
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	s.RecentTransitions = []audit.Entry{}
	if h.History != nil {
		recent, err := h.History.Recent(r.Context(), recentTransitions)
		if err != nil {
			api.WriteFailure(w, r, err)
			return
		}
		s.RecentTransitions = recent
	}
	api.WriteJSON(w, http.StatusOK, s)
}
