package room

import (
	"context"
	"net/http"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
)

type Store interface {
	Create(ctx context.Context, in Input) (*Room, error)
	Get(ctx context.Context, id string) (*Room, error)
	ListByHotel(ctx context.Context, hotelID string) ([]Room, error)
	Update(ctx context.Context, id string, c Changes) (*Room, error)
	Delete(ctx context.Context, id string) error
}

// HotelOwners resolves a hotel to its owning user.
type HotelOwners interface {
	OwnerOf(ctx context.Context, hotelID string) (string, error)
}

type Handlers struct {
	Rooms  Store
	Hotels HotelOwners
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := api.Decode(r, &in); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	if in.Price.IsNegative() {
		api.WriteFailure(w, r, api.Invalid("invalid fields", "price"))
		return
	}
	if err := h.canManage(r, in.HotelID); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	rm, err := h.Rooms.Create(r.Context(), in)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, rm)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	rm, err := h.Rooms.Get(r.Context(), id)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rm)
}

// ListByHotel serves GET /api/hotels/{id}/rooms.
func (h Handlers) ListByHotel(w http.ResponseWriter, r *http.Request) {
	hotelID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	items, err := h.Rooms.ListByHotel(r.Context(), hotelID)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Put(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.loadManaged(w, r)
	if !ok {
		return
	}
	var c Changes
	if err := api.Decode(r, &c); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	if c.Price != nil && c.Price.IsNegative() {
		api.WriteFailure(w, r, api.Invalid("invalid fields", "price"))
		return
	}
	updated, err := h.Rooms.Update(r.Context(), rm.ID, c)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.loadManaged(w, r)
	if !ok {
		return
	}
	if err := h.Rooms.Delete(r.Context(), rm.ID); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h Handlers) loadManaged(w http.ResponseWriter, r *http.Request) (*Room, bool) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return nil, false
	}
	rm, err := h.Rooms.Get(r.Context(), id)
	if err != nil {
		api.WriteFailure(w, r, err)
		return nil, false
	}
	if err := h.canManage(r, rm.HotelID); err != nil {
		api.WriteFailure(w, r, err)
		return nil, false
	}
	return rm, true
}

// canManage allows admins, and hoteliers on their own hotel.
func (h Handlers) canManage(r *http.Request, hotelID string) error {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		return api.ErrUnauthenticated
	}
	if !p.Can(role.ManageInventory) {
		return role.ErrForbidden
	}
	if p.Can(role.ManageAnyHotel) {
		return nil
	}
	owner, err := h.Hotels.OwnerOf(r.Context(), hotelID)
	if err != nil {
		return err
	}
	if owner != p.UserID {
		return role.ErrForbidden
	}
	return nil
}
