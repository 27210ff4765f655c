package hotel

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

type memUser struct {
	Role         role.Role
	OwnedHotelID *string
}

// memStore mirrors the Postgres repository. InTx holds the lock for the whole
// callback and restores a snapshot when it fails, like a rollback.
type memStore struct {
	mu          sync.Mutex
	hotels      map[string]Hotel
	users       map[string]memUser
	transitions []audit.Entry
}

func newMemStore() *memStore {
	return &memStore{hotels: map[string]Hotel{}, users: map[string]memUser{}}
}

func (m *memStore) Create(_ context.Context, ownerID string, in Submission) (*Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	h := Hotel{
		ID: uuid.NewString(), OwnerID: ownerID, Name: in.Name, Email: in.Email, Address: in.Address,
		RoomTypes: in.RoomTypes, Prices: in.Prices, RoomsAvailable: in.RoomsAvailable,
		Images: nonNil(in.Images), Documents: nonNil(in.Documents),
		Status: workflow.StatusPending, CreatedAt: now, UpdatedAt: now,
	}
	m.hotels[h.ID] = h
	return &h, nil
}

func (m *memStore) Get(_ context.Context, id string) (*Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hotels[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &h, nil
}

func (m *memStore) List(_ context.Context, status *workflow.Status) ([]Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Hotel{}
	for _, h := range m.hotels {
		if status == nil || h.Status == *status {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID string) ([]Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Hotel{}
	for _, h := range m.hotels {
		if h.OwnerID == ownerID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, id string, c Changes) (*Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hotels[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if c.Name != nil {
		h.Name = *c.Name
	}
	if c.Description != nil {
		h.Description = *c.Description
	}
	m.hotels[id] = h
	return &h, nil
}

func (m *memStore) AddMedia(_ context.Context, id string, md Media) (*Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hotels[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if md.Kind == MediaDocument {
		h.Documents = append(h.Documents, md.URL)
	} else {
		h.Images = append(h.Images, md.URL)
	}
	m.hotels[id] = h
	return &h, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hotels[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.hotels, id)
	return nil
}

func (m *memStore) InTx(ctx context.Context, fn func(TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hotels := make(map[string]Hotel, len(m.hotels))
	for k, v := range m.hotels {
		hotels[k] = v
	}
	users := make(map[string]memUser, len(m.users))
	for k, v := range m.users {
		users[k] = v
	}
	transitions := append([]audit.Entry(nil), m.transitions...)

	if err := fn(memTx{m}); err != nil {
		m.hotels, m.users, m.transitions = hotels, users, transitions
		return err
	}
	return nil
}

type memTx struct{ m *memStore }

func (t memTx) GetForUpdate(_ context.Context, id string) (*Hotel, error) {
	h, ok := t.m.hotels[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &h, nil
}

func (t memTx) SetStatus(_ context.Context, id string, from, to workflow.Status) error {
	h := t.m.hotels[id]
	if h.Status != from {
		return &workflow.TransitionError{Entity: "hotel", From: from, To: to}
	}
	now := time.Now()
	h.Status, h.ReviewedAt = to, &now
	t.m.hotels[id] = h
	return nil
}

func (t memTx) PromoteOwner(_ context.Context, ownerID, hotelID string) error {
	u, ok := t.m.users[ownerID]
	if !ok {
		return db.ErrNotFound
	}
	if u.Role != role.Admin {
		u.Role = role.Hotelier
	}
	id := hotelID
	u.OwnedHotelID = &id
	t.m.users[ownerID] = u
	return nil
}

func (t memTx) RecordTransition(_ context.Context, e audit.Entry) error {
	t.m.transitions = append(t.m.transitions, e)
	return nil
}

func (m *memStore) user(id string) memUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

func (m *memStore) hotel(id string) Hotel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hotels[id]
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]Hotel
	deletes int
}

func (c *memCache) Get(_ context.Context, key string, dst any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return errMiss
	}
	*(dst.(*[]Hotel)) = v
	return nil
}

func (c *memCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string][]Hotel{}
	}
	c.entries[key] = v.([]Hotel)
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

type sentMail struct {
	mu   sync.Mutex
	to   []string
	fail error
}

func (s *sentMail) Send(_ context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = append(s.to, to)
	return s.fail
}
