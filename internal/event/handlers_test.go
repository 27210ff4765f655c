package event

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

type memStore struct {
	mu          sync.Mutex
	events      map[string]Event
	transitions []audit.Entry
}

func (m *memStore) Create(_ context.Context, in NewEvent) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := in.SubmitterID
	e := Event{
		ID: uuid.NewString(), SubmitterID: &sub, Title: in.Title, Description: in.Description,
		Location: in.Location, ContactEmail: in.ContactEmail, StartsAt: in.StartsAt, EndsAt: in.EndsAt,
		ImageURL: in.ImageURL, Status: workflow.StatusPending, CreatedAt: time.Now(),
	}
	m.events[e.ID] = e
	return &e, nil
}

func (m *memStore) List(_ context.Context, status *workflow.Status) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Event{}
	for _, e := range m.events {
		if status == nil || e.Status == *status {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memStore) InTx(_ context.Context, fn func(TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make(map[string]Event, len(m.events))
	for k, v := range m.events {
		events[k] = v
	}
	transitions := append([]audit.Entry(nil), m.transitions...)
	if err := fn(memTx{m}); err != nil {
		m.events, m.transitions = events, transitions
		return err
	}
	return nil
}

type memTx struct{ m *memStore }

func (t memTx) GetForUpdate(_ context.Context, id string) (*Event, error) {
	e, ok := t.m.events[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &e, nil
}

func (t memTx) SetStatus(_ context.Context, id string, from, to workflow.Status) error {
	e := t.m.events[id]
	if e.Status != from {
		return &workflow.TransitionError{Entity: workflow.Event.Entity, From: from, To: to}
	}
	e.Status = to
	t.m.events[id] = e
	return nil
}

func (t memTx) RecordTransition(_ context.Context, e audit.Entry) error {
	t.m.transitions = append(t.m.transitions, e)
	return nil
}

type sentMail struct {
	mu       sync.Mutex
	to       []string
	subjects []string
}

func (s *sentMail) Send(_ context.Context, to, subject, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = append(s.to, to)
	s.subjects = append(s.subjects, subject)
	return nil
}

func newRouter(store *memStore, mail *sentMail) http.Handler {
	h := Handlers{Events: &Service{Store: store, Mail: mail}}
	principals := map[string]*api.Principal{
		"user":  {UserID: uuid.NewString(), Role: role.User},
		"admin": {UserID: uuid.NewString(), Role: role.Admin},
	}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := principals[r.Header.Get("X-Test-User")]; ok {
				r = r.WithContext(api.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/approved", h.Approved)
	r.With(api.RequireAuth).Post("/", h.Submit)
	r.Group(func(r chi.Router) {
		r.Use(api.Require(role.ModerateEvents))
		r.Get("/", h.List)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/decline", h.Decline)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func call(t *testing.T, router http.Handler, method, path, who, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Test-User", who)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const festival = `{
  "title": "Tihar Lights Walk",
  "location": "Thamel, Kathmandu",
  "contactEmail": "events@thamel.example",
  "startsAt": "2026-11-09T17:00:00+05:45",
  "endsAt": "2026-11-09"
}`

func submit(t *testing.T, router http.Handler, body string) Event {
	t.Helper()
	rec := call(t, router, http.MethodPost, "/", "user", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var e Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestSubmit_RejectsEndBeforeStart(t *testing.T) {
	router := newRouter(&memStore{events: map[string]Event{}}, &sentMail{})
	rec := call(t, router, http.MethodPost, "/", "user", festival)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "endsAt")
}

func TestApproveFlow(t *testing.T) {
	store, mail := &memStore{events: map[string]Event{}}, &sentMail{}
	router := newRouter(store, mail)

	e := submit(t, router, strings.Replace(festival, `"endsAt": "2026-11-09"`, `"endsAt": "2026-11-10"`, 1))
	assert.Equal(t, workflow.StatusPending, e.Status)
	assert.Equal(t, 11, e.StartsAt.UTC().Hour())

	rec := call(t, router, http.MethodGet, "/approved", "", "")
	assert.JSONEq(t, `{"items": []}`, rec.Body.String())

	rec = call(t, router, http.MethodPost, "/"+e.ID+"/approve", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"events@thamel.example"}, mail.to)
	assert.Contains(t, mail.subjects[0], "approved")

	rec = call(t, router, http.MethodGet, "/approved", "", "")
	assert.Contains(t, rec.Body.String(), e.ID)

	rec = call(t, router, http.MethodPost, "/"+e.ID+"/decline", "admin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, workflow.StatusApproved, store.events[e.ID].Status)
	assert.Len(t, store.transitions, 1)
}

func TestModerationRequiresCapability(t *testing.T) {
	store := &memStore{events: map[string]Event{}}
	router := newRouter(store, &sentMail{})
	e := submit(t, router, strings.Replace(festival, `,
  "endsAt": "2026-11-09"`, "", 1))

	assert.Equal(t, http.StatusForbidden, call(t, router, http.MethodPost, "/"+e.ID+"/approve", "user", "").Code)
	assert.Equal(t, http.StatusForbidden, call(t, router, http.MethodGet, "/", "user", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, router, http.MethodPost, "/", "", festival).Code)

	assert.Equal(t, http.StatusBadRequest, call(t, router, http.MethodGet, "/?status=Rejected", "admin", "").Code)
	assert.Equal(t, http.StatusNoContent, call(t, router, http.MethodDelete, "/"+e.ID, "admin", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, router, http.MethodDelete, "/"+e.ID, "admin", "").Code)
}
