package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/pricing"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

type memRoom struct {
	RoomSummary
	HotelID string
}

// memStore keeps bookings, their referenced rows and the per-user application
// list. InTx holds the lock for the callback and restores a snapshot on error.
type memStore struct {
	mu           sync.Mutex
	bookings     map[string]Booking
	users        map[string]UserSummary
	hotels       map[string]HotelSummary
	rooms        map[string]memRoom
	applications map[string][]string
	transitions  []audit.Entry
	failAppend   error
	failGet      error
}

func newMemStore() *memStore {
	return &memStore{
		bookings:     map[string]Booking{},
		users:        map[string]UserSummary{},
		hotels:       map[string]HotelSummary{},
		rooms:        map[string]memRoom{},
		applications: map[string][]string{},
	}
}

func (m *memStore) view(b Booking) View {
	v := View{Booking: b, User: m.users[b.UserID], Hotel: m.hotels[b.HotelID], Rooms: []RoomSummary{}}
	for _, id := range b.RoomIDs {
		v.Rooms = append(v.Rooms, m.rooms[id].RoomSummary)
	}
	return v
}

func (m *memStore) sorted(keep func(Booking) bool) []View {
	out := []View{}
	for _, b := range m.bookings {
		if keep(b) {
			out = append(out, m.view(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) Get(_ context.Context, id string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	v := m.view(b)
	return &v, nil
}

func (m *memStore) List(_ context.Context, offset, limit int) ([]View, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted(func(Booking) bool { return true })
	if offset > len(all) {
		offset = len(all)
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (m *memStore) ListAll(_ context.Context) ([]View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(Booking) bool { return true }), nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []View{}
	for _, id := range m.applications[userID] {
		out = append(out, m.view(m.bookings[id]))
	}
	return out, nil
}

func (m *memStore) ListByHotel(_ context.Context, hotelID string) ([]View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(b Booking) bool { return b.HotelID == hotelID }), nil
}

func (m *memStore) RoomRates(_ context.Context, hotelID string, roomIDs []string) ([]pricing.RoomRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []pricing.RoomRate
	for _, id := range roomIDs {
		r, ok := m.rooms[id]
		if ok && r.HotelID == hotelID {
			out = append(out, pricing.RoomRate{RoomID: r.ID, Type: r.Type, Price: r.Price})
		}
	}
	return out, nil
}

func (m *memStore) InTx(_ context.Context, fn func(TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bookings := make(map[string]Booking, len(m.bookings))
	for k, v := range m.bookings {
		bookings[k] = v
	}
	applications := make(map[string][]string, len(m.applications))
	for k, v := range m.applications {
		applications[k] = append([]string(nil), v...)
	}
	transitions := append([]audit.Entry(nil), m.transitions...)

	if err := fn(memTx{m}); err != nil {
		m.bookings, m.applications, m.transitions = bookings, applications, transitions
		return err
	}
	return nil
}

type memTx struct{ m *memStore }

func (t memTx) Insert(_ context.Context, in NewBooking) (*Booking, error) {
	if _, ok := t.m.hotels[in.HotelID]; !ok {
		return nil, api.Invalid("unknown reference", "hotelId")
	}
	if _, ok := t.m.users[in.UserID]; !ok {
		return nil, api.Invalid("unknown reference", "userId")
	}
	for _, id := range in.RoomIDs {
		if _, ok := t.m.rooms[id]; !ok {
			return nil, api.Invalid("unknown reference", "roomIds")
		}
	}
	b := Booking{
		ID: uuid.NewString(), HotelID: in.HotelID, UserID: in.UserID, RoomIDs: in.RoomIDs,
		CheckIn: in.CheckIn, CheckOut: in.CheckOut, Guests: in.Guests, TotalPrice: in.TotalPrice,
		SpecialRequests: in.SpecialRequests, PaymentStatus: workflow.StatusPending,
		CreatedAt: time.Now().Add(time.Duration(len(t.m.bookings)) * time.Millisecond),
	}
	t.m.bookings[b.ID] = b
	return &b, nil
}

func (t memTx) AddApplication(_ context.Context, userID, bookingID string) error {
	if t.m.failAppend != nil {
		return t.m.failAppend
	}
	t.m.applications[userID] = append(t.m.applications[userID], bookingID)
	return nil
}

func (t memTx) GetForUpdate(_ context.Context, id string) (*Booking, error) {
	b, ok := t.m.bookings[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &b, nil
}

func (t memTx) GetByPaymentRefForUpdate(_ context.Context, ref string) (*Booking, error) {
	for _, b := range t.m.bookings {
		if b.PaymentRef != nil && *b.PaymentRef == ref {
			return &b, nil
		}
	}
	return nil, db.ErrNotFound
}

func (t memTx) SetPaymentRef(_ context.Context, id, ref string) error {
	b := t.m.bookings[id]
	b.PaymentRef = &ref
	t.m.bookings[id] = b
	return nil
}

func (t memTx) SetPaymentStatus(_ context.Context, id string, from, to workflow.Status) error {
	b := t.m.bookings[id]
	if b.PaymentStatus != from {
		return &workflow.TransitionError{Entity: workflow.Payment.Entity, From: from, To: to}
	}
	b.PaymentStatus = to
	t.m.bookings[id] = b
	return nil
}

func (t memTx) RecordTransition(_ context.Context, e audit.Entry) error {
	t.m.transitions = append(t.m.transitions, e)
	return nil
}

func (m *memStore) seed(ownerID string) (userID, hotelID string, roomIDs []string) {
	userID, hotelID = uuid.NewString(), uuid.NewString()
	m.users[userID] = UserSummary{ID: userID, Name: "Sita", Email: "sita@example.com"}
	m.hotels[hotelID] = HotelSummary{ID: hotelID, Name: "Lakeside Inn", OwnerID: ownerID}
	for _, r := range []struct {
		typ   string
		price string
	}{{"single", "1500"}, {"double", "2500.50"}} {
		id := uuid.NewString()
		m.rooms[id] = memRoom{RoomSummary: RoomSummary{ID: id, Type: r.typ, Price: decimal.RequireFromString(r.price)}, HotelID: hotelID}
		roomIDs = append(roomIDs, id)
	}
	return userID, hotelID, roomIDs
}

type hotelOwners map[string]string

func (h hotelOwners) OwnerOf(_ context.Context, hotelID string) (string, error) {
	o, ok := h[hotelID]
	if !ok {
		return "", db.ErrNotFound
	}
	return o, nil
}
