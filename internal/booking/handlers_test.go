package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

type fixture struct {
	store   *memStore
	svc     *Service
	router  http.Handler
	guest   *api.Principal
	owner   *api.Principal
	admin   *api.Principal
	hotelID string
	roomIDs []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: newMemStore(),
		owner: &api.Principal{UserID: uuid.NewString(), Role: role.Hotelier},
		admin: &api.Principal{UserID: uuid.NewString(), Role: role.Admin},
	}
	var guestID string
	guestID, f.hotelID, f.roomIDs = f.store.seed(f.owner.UserID)
	f.guest = &api.Principal{UserID: guestID, Role: role.User}
	f.svc = &Service{Store: f.store, Hotels: hotelOwners{f.hotelID: f.owner.UserID}}

	h := Handlers{Bookings: f.svc}
	principals := map[string]*api.Principal{"guest": f.guest, "owner": f.owner, "admin": f.admin}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := principals[r.Header.Get("X-Test-User")]; ok {
				r = r.WithContext(api.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Post("/quote", h.Quote)
	r.Group(func(r chi.Router) {
		r.Use(api.RequireAuth)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Get("/user/{id}", h.ForUser)
		r.Get("/hotel/{id}", h.ForHotel)
	})
	r.Group(func(r chi.Router) {
		r.Use(api.Require(role.ViewAllBookings))
		r.Get("/", h.List)
		r.Get("/export", h.Export)
	})
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path, who, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if who != "" {
		req.Header.Set("X-Test-User", who)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) payload() string {
	ids, _ := json.Marshal(f.roomIDs)
	return fmt.Sprintf(`{
  "hotelId": %q,
  "userId": %q,
  "roomIds": %s,
  "checkIn": "2026-11-01",
  "checkOut": "2026-11-03T00:00:00Z",
  "guests": 2,
  "totalPrice": "8001.00",
  "specialRequests": "late arrival"
}`, f.hotelID, f.guest.UserID, ids)
}

func TestCreate_PopulatesViewAndApplication(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/", "guest", f.payload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, "Sita", v.User.Name)
	assert.Equal(t, "Lakeside Inn", v.Hotel.Name)
	require.Len(t, v.Rooms, 2)
	assert.Equal(t, "single", v.Rooms[0].Type)
	assert.Equal(t, workflow.StatusPending, v.PaymentStatus)
	assert.True(t, v.TotalPrice.Equal(decimal.RequireFromString("8001")))
	assert.Equal(t, "2026-11-03", v.CheckOut.Format(time.DateOnly))

	assert.Equal(t, []string{v.ID}, f.store.applications[f.guest.UserID])
}

func TestCreate_DuplicatePayloadBooksTwice(t *testing.T) {
	f := newFixture(t)

	first := f.do(t, http.MethodPost, "/", "guest", f.payload())
	second := f.do(t, http.MethodPost, "/", "guest", f.payload())
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)

	var a, b View
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, f.store.applications[f.guest.UserID], 2)
}

func TestCreate_KeepsRepeatedRoomUnits(t *testing.T) {
	f := newFixture(t)
	f.roomIDs = []string{f.roomIDs[1], f.roomIDs[1]}

	rec := f.do(t, http.MethodPost, "/", "guest", f.payload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, f.roomIDs, v.RoomIDs)
	require.Len(t, v.Rooms, 2)
	assert.Equal(t, "double", v.Rooms[0].Type)
	assert.Equal(t, "double", v.Rooms[1].Type)
}

func TestCreate_ReloadFailureStillReturnsBooking(t *testing.T) {
	f := newFixture(t)
	f.store.failGet = errors.New("connection reset")

	rec := f.do(t, http.MethodPost, "/", "guest", f.payload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, f.hotelID, v.Hotel.ID)
	assert.Equal(t, f.guest.UserID, v.User.ID)
	assert.Len(t, v.Rooms, 2)
	assert.Equal(t, []string{v.ID}, f.store.applications[f.guest.UserID])
}

func TestCreate_ListsMissingFields(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/", "guest", fmt.Sprintf(`{"hotelId": %q}`, f.hotelID))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var env api.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, "missing required fields", env.Error.Message)
	assert.ElementsMatch(t,
		[]string{"userId", "roomIds", "checkIn", "checkOut", "guests", "totalPrice"},
		env.Error.Fields)
	assert.Empty(t, f.store.bookings)
}

func TestCreate_RejectsUnknownReferences(t *testing.T) {
	f := newFixture(t)
	body := strings.Replace(f.payload(), f.hotelID, uuid.NewString(), 1)

	rec := f.do(t, http.MethodPost, "/", "guest", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "hotelId")
	assert.Empty(t, f.store.bookings)
}

func TestCreate_ForAnotherUserNeedsAdmin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/", "owner", f.payload())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/", "admin", f.payload())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreate_RollsBackWhenApplicationFails(t *testing.T) {
	f := newFixture(t)
	f.store.failAppend = errors.New("connection reset")

	rec := f.do(t, http.MethodPost, "/", "guest", f.payload())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, f.store.bookings)
	assert.Empty(t, f.store.applications[f.guest.UserID])
}

func TestCreate_RequiresSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/", "", f.payload())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGet_VisibleToGuestOwnerAndAdmin(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/", "guest", f.payload())
	require.Equal(t, http.StatusCreated, rec.Code)
	var v View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))

	for _, who := range []string{"guest", "owner", "admin"} {
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/"+v.ID, who, "").Code, who)
	}

	stranger := &api.Principal{UserID: uuid.NewString(), Role: role.User}
	_, err := f.svc.Get(context.Background(), stranger, v.ID)
	assert.ErrorIs(t, err, role.ErrForbidden)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/"+uuid.NewString(), "admin", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/not-a-uuid", "admin", "").Code)
}

func TestList_PagesNewestFirst(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/", "guest", f.payload()).Code)
	}

	rec := f.do(t, http.MethodGet, "/?page=2&limit=2", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 2, p.Page)
	assert.Len(t, p.Items, 1)

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/", "guest", "").Code)

	rec = f.do(t, http.MethodGet, "/?page=922337203685477580&limit=100", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Empty(t, p.Items)
	assert.Equal(t, 3, p.Total)
}

func TestForUserAndForHotel(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/", "guest", f.payload()).Code)

	rec := f.do(t, http.MethodGet, "/user/"+f.guest.UserID, "guest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items"`)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/user/"+f.guest.UserID, "owner", "").Code)

	rec = f.do(t, http.MethodGet, "/hotel/"+f.hotelID, "owner", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Items []View `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Items, 1)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/hotel/"+f.hotelID, "guest", "").Code)
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	ids, _ := json.Marshal(f.roomIDs)
	body := fmt.Sprintf(`{"hotelId": %q, "roomIds": %s, "checkIn": "2026-11-01", "checkOut": "2026-11-03"}`, f.hotelID, ids)

	rec := f.do(t, http.MethodPost, "/quote", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"nights":2`)

	body = fmt.Sprintf(`{"hotelId": %q, "roomIds": [%q], "checkIn": "2026-11-01", "checkOut": "2026-11-03"}`, uuid.NewString(), f.roomIDs[0])
	rec = f.do(t, http.MethodPost, "/quote", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_WritesWorkbook(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/", "guest", f.payload()).Code)

	rec := f.do(t, http.MethodGet, "/export", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bookings-")

	wb, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Booking ID", rows[0][0])
	assert.Equal(t, "Lakeside Inn", rows[1][4])
}

func TestSettlePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.Create(ctx, f.guest, mustRequest(t, f.payload()))
	require.NoError(t, err)

	require.NoError(t, f.svc.AttachPayment(ctx, v.ID, "pidx-1"))

	b, err := f.svc.SettlePayment(ctx, "pidx-1", workflow.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPaid, b.PaymentStatus)
	require.Len(t, f.store.transitions, 1)

	// Verifying again is a no-op.
	_, err = f.svc.SettlePayment(ctx, "pidx-1", workflow.StatusPaid)
	require.NoError(t, err)
	assert.Len(t, f.store.transitions, 1)

	_, err = f.svc.SettlePayment(ctx, "pidx-1", workflow.StatusFailed)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	err = f.svc.AttachPayment(ctx, v.ID, "pidx-2")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	_, err = f.svc.SettlePayment(ctx, "unknown", workflow.StatusPaid)
	assert.Error(t, err)
}

func mustRequest(t *testing.T, body string) CreateRequest {
	t.Helper()
	var req CreateRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}
