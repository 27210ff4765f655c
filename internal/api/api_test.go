package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/config"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/session"
)

type sampleBody struct {
	HotelID    string           `json:"hotelId" validate:"required"`
	RoomIDs    []string         `json:"roomIds" validate:"required,min=1"`
	Guests     int              `json:"guests" validate:"required"`
	TotalPrice *decimal.Decimal `json:"totalPrice" validate:"required"`
	Note       string           `json:"note"`
}

func decodeErr(t *testing.T, body string) *ValidationError {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dst sampleBody
	err := Decode(r, &dst)
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %T", err)
	return ve
}

func TestDecode_ListsMissingJSONFields(t *testing.T) {
	ve := decodeErr(t, `{"hotelId":"h1","note":"x"}`)
	assert.Equal(t, "missing required fields", ve.Message)
	assert.ElementsMatch(t, []string{"roomIds", "guests", "totalPrice"}, ve.Fields)
}

func TestDecode_Malformed(t *testing.T) {
	assert.Equal(t, "invalid json", decodeErr(t, `{"hotelId":`).Message)
	assert.Equal(t, "empty body", decodeErr(t, ``).Message)

	ve := decodeErr(t, `{"hotelId":"h1","roomIds":["r"],"guests":"two","totalPrice":10}`)
	assert.Equal(t, []string{"guests"}, ve.Fields)
}

func TestDecode_OK(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"hotelId":"h1","roomIds":["r1"],"guests":2,"totalPrice":"120.50"}`))
	var dst sampleBody
	require.NoError(t, Decode(r, &dst))
	assert.Equal(t, "120.5", dst.TotalPrice.String())
}

func TestWriteFailure_Taxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{Invalid("missing required fields", "a"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{fmt.Errorf("get hotel: %w", db.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{workflow.Hotel.Check(workflow.StatusApproved, workflow.StatusRejected), http.StatusBadRequest, "INVALID_STATE_TRANSITION"},
		{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
		{role.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteFailure(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())

		var env ErrorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.Equal(t, tc.code, env.Error.Code)
	}
}

func TestWriteFailure_RawMessageOnlyWhenExposed(t *testing.T) {
	boom := errors.New("pq: relation does not exist")
	h := func(w http.ResponseWriter, r *http.Request) { WriteFailure(w, r, boom) }

	for _, expose := range []bool{true, false} {
		rec := httptest.NewRecorder()
		ErrorDetail(expose)(http.HandlerFunc(h)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		var env ErrorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		if expose {
			assert.Equal(t, boom.Error(), env.Error.Message)
		} else {
			assert.Equal(t, "internal error", env.Error.Message)
		}
	}
}

type staticLoader map[string]*Principal

func (s staticLoader) LoadPrincipal(_ context.Context, id string) (*Principal, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, db.ErrNotFound
}

func TestSessionAuthAndRequire(t *testing.T) {
	cfg := config.SessionConfig{Secret: "s3cret", TTL: time.Hour, CookieName: "token"}
	// The stored role wins over the role baked into the token.
	loader := staticLoader{"u1": {UserID: "u1", Role: role.Admin}}

	h := SessionAuth(cfg, loader)(Require(role.ReviewHotels)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := session.Sign(cfg.Secret, "u1", role.User, time.Now(), time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	loader["u1"].Role = role.User
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORS_CredentialedPreflight(t *testing.T) {
	h := CORSMiddleware(CORSOptions{AllowedOrigins: []string{"http://localhost:5173/"}, AllowCredentials: true})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }))

	req := httptest.NewRequest(http.MethodOptions, "/api/hotels", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/hotels", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=0&limit=500", nil)
	page, limit := Page(r, 10, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, limit)
}

func TestPage_HugePageKeepsOffsetPositive(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=922337203685477580&limit=100", nil)
	page, limit := Page(r, 10, 100)
	offset := (page - 1) * limit
	assert.GreaterOrEqual(t, offset, 0)
	assert.LessOrEqual(t, offset, maxOffset)
	assert.Equal(t, maxOffset/100+1, page)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("checkIn", "2025-03-01T18:30:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", d.Format(time.DateOnly))

	_, err = ParseDate("checkOut", "next tuesday")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"checkOut"}, ve.Fields)
}
