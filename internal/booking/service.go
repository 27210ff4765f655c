package booking

import (
	"context"
	"errors"
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/internal/metrics"
	"github.com/SwarupDevkota/ghumna-sub000/internal/pricing"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

type Store interface {
	Get(ctx context.Context, id string) (*View, error)
	List(ctx context.Context, offset, limit int) ([]View, int, error)
	ListAll(ctx context.Context) ([]View, error)
	ListByUser(ctx context.Context, userID string) ([]View, error)
	ListByHotel(ctx context.Context, hotelID string) ([]View, error)
	RoomRates(ctx context.Context, hotelID string, roomIDs []string) ([]pricing.RoomRate, error)
	InTx(ctx context.Context, fn func(TxStore) error) error
}

type TxStore interface {
	Insert(ctx context.Context, in NewBooking) (*Booking, error)
	AddApplication(ctx context.Context, userID, bookingID string) error
	GetForUpdate(ctx context.Context, id string) (*Booking, error)
	GetByPaymentRefForUpdate(ctx context.Context, ref string) (*Booking, error)
	SetPaymentRef(ctx context.Context, id, ref string) error
	SetPaymentStatus(ctx context.Context, id string, from, to workflow.Status) error
	RecordTransition(ctx context.Context, e audit.Entry) error
}

type HotelOwners interface {
	OwnerOf(ctx context.Context, hotelID string) (string, error)
}

type Service struct {
	Store  Store
	Hotels HotelOwners
}

// Create inserts the booking, its rooms and the user's application entry in
// one transaction. There is no idempotency key: a retried request books twice.
func (s *Service) Create(ctx context.Context, p *api.Principal, req CreateRequest) (*View, error) {
	if p == nil {
		return nil, api.ErrUnauthenticated
	}
	if !p.Owns(req.UserID, role.ManageUsers) {
		return nil, role.ErrForbidden
	}
	checkIn, err := api.ParseDate("checkIn", req.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := api.ParseDate("checkOut", req.CheckOut)
	if err != nil {
		return nil, err
	}

	in := NewBooking{
		HotelID:         req.HotelID,
		UserID:          req.UserID,
		RoomIDs:         req.RoomIDs,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Guests,
		TotalPrice:      *req.TotalPrice,
		SpecialRequests: req.SpecialRequests,
	}
	s.compareQuote(ctx, in)

	var created *Booking
	err = s.Store.InTx(ctx, func(tx TxStore) error {
		b, err := tx.Insert(ctx, in)
		if err != nil {
			return err
		}
		if err := tx.AddApplication(ctx, b.UserID, b.ID); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info("booking created", "booking_id", created.ID, "hotel_id", created.HotelID, "user_id", created.UserID)

	v, err := s.Store.Get(ctx, created.ID)
	if err != nil {
		// Already committed: answer with what was inserted rather than invite a retry.
		log.Error("reload created booking", "booking_id", created.ID, "err", err)
		return committedView(created), nil
	}
	return v, nil
}

func committedView(b *Booking) *View {
	v := &View{
		Booking: *b,
		User:    UserSummary{ID: b.UserID},
		Hotel:   HotelSummary{ID: b.HotelID},
		Rooms:   make([]RoomSummary, 0, len(b.RoomIDs)),
	}
	for _, id := range b.RoomIDs {
		v.Rooms = append(v.Rooms, RoomSummary{ID: id})
	}
	return v
}

// compareQuote logs when the client total disagrees with room prices. The
// client total is kept either way.
func (s *Service) compareQuote(ctx context.Context, in NewBooking) {
	rates, err := s.Store.RoomRates(ctx, in.HotelID, in.RoomIDs)
	if err != nil || len(rates) != len(in.RoomIDs) {
		return
	}
	q, err := pricing.Compute(rates, in.CheckIn, in.CheckOut, pricing.DefaultCurrencyScale)
	if err != nil {
		return
	}
	if !q.Matches(in.TotalPrice) {
		logger.FromContext(ctx).Warn("booking total differs from room prices",
			"hotel_id", in.HotelID, "client_total", in.TotalPrice.String(), "quoted_total", q.Total.String())
	}
}

func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*pricing.Quote, error) {
	checkIn, err := api.ParseDate("checkIn", req.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := api.ParseDate("checkOut", req.CheckOut)
	if err != nil {
		return nil, err
	}
	rates, err := s.Store.RoomRates(ctx, req.HotelID, req.RoomIDs)
	if err != nil {
		return nil, err
	}
	if len(rates) != len(req.RoomIDs) {
		return nil, api.Invalid("rooms do not belong to hotel", "roomIds")
	}
	q, err := pricing.Compute(rates, checkIn, checkOut, pricing.DefaultCurrencyScale)
	if err != nil {
		var ve pricing.ValidationError
		if errors.As(err, &ve) {
			return nil, api.Invalid(ve.Message, ve.Field)
		}
		return nil, err
	}
	return q, nil
}

func (s *Service) Page(ctx context.Context, page, limit int) (*Page, error) {
	items, total, err := s.Store.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Get is visible to the guest, the hotel owner and admins.
func (s *Service) Get(ctx context.Context, p *api.Principal, id string) (*View, error) {
	v, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, api.ErrUnauthenticated
	}
	if v.UserID != p.UserID && v.Hotel.OwnerID != p.UserID && !p.Can(role.ViewAllBookings) {
		return nil, role.ErrForbidden
	}
	return v, nil
}

func (s *Service) ForUser(ctx context.Context, p *api.Principal, userID string) ([]View, error) {
	if !p.Owns(userID, role.ViewAllBookings) {
		return nil, role.ErrForbidden
	}
	return s.Store.ListByUser(ctx, userID)
}

func (s *Service) ForHotel(ctx context.Context, p *api.Principal, hotelID string) ([]View, error) {
	if p == nil {
		return nil, api.ErrUnauthenticated
	}
	if !p.Can(role.ViewAllBookings) {
		owner, err := s.Hotels.OwnerOf(ctx, hotelID)
		if err != nil {
			return nil, err
		}
		if owner != p.UserID {
			return nil, role.ErrForbidden
		}
	}
	return s.Store.ListByHotel(ctx, hotelID)
}

// AttachPayment stores the provider reference for a pending booking.
func (s *Service) AttachPayment(ctx context.Context, bookingID, ref string) error {
	return s.Store.InTx(ctx, func(tx TxStore) error {
		b, err := tx.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.PaymentStatus != workflow.StatusPending {
			return &workflow.TransitionError{Entity: workflow.Payment.Entity, From: b.PaymentStatus, To: workflow.StatusPending}
		}
		return tx.SetPaymentRef(ctx, b.ID, ref)
	})
}

// SettlePayment applies a provider-reported outcome. Re-reporting the current
// status is a no-op so repeated verify calls are harmless.
func (s *Service) SettlePayment(ctx context.Context, ref string, to workflow.Status) (*Booking, error) {
	var settled *Booking
	changed := false
	err := s.Store.InTx(ctx, func(tx TxStore) error {
		b, err := tx.GetByPaymentRefForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		settled = b
		if b.PaymentStatus == to {
			return nil
		}
		if err := workflow.Payment.Check(b.PaymentStatus, to); err != nil {
			return err
		}
		if err := tx.SetPaymentStatus(ctx, b.ID, b.PaymentStatus, to); err != nil {
			return err
		}
		if err := tx.RecordTransition(ctx, audit.Entry{
			Entity: workflow.Payment.Entity, EntityID: b.ID, From: b.PaymentStatus, To: to,
		}); err != nil {
			return err
		}
		b.PaymentStatus = to
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.Transition(workflow.Payment.Entity, string(to))
		logger.FromContext(ctx).Info("payment settled", "booking_id", settled.ID, "status", to)
	}
	return settled, nil
}

func exportName(now time.Time) string {
	return "bookings-" + now.Format("20060102-150405") + ".xlsx"
}
