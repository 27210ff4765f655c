package booking

import (
	"net/http"
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
)

type Handlers struct {
	Bookings *Service
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	created, err := h.Bookings.Create(r.Context(), api.PrincipalFromContext(r.Context()), req)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, created)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	page, limit := api.Page(r, 10, 100)
	out, err := h.Bookings.Page(r.Context(), page, limit)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	v, err := h.Bookings.Get(r.Context(), api.PrincipalFromContext(r.Context()), id)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, v)
}

func (h Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	q, err := h.Bookings.Quote(r.Context(), req)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, q)
}

func (h Handlers) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportName(time.Now())+`"`)
	if err := h.Bookings.Export(r.Context(), w); err != nil {
		// Headers may already be out; log and let the client see a truncated file.
		logger.FromContext(r.Context()).Error("booking export failed", "err", err)
	}
}

// ForUser serves GET /api/user/{id}/bookings.
func (h Handlers) ForUser(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	items, err := h.Bookings.ForUser(r.Context(), api.PrincipalFromContext(r.Context()), id)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ForHotel serves GET /api/hotels/{id}/bookings.
func (h Handlers) ForHotel(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	items, err := h.Bookings.ForHotel(r.Context(), api.PrincipalFromContext(r.Context()), id)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
