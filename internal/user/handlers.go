package user

import (
	"context"
	"net/http"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
)

type Store interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, p Profile) (*User, error)
	Delete(ctx context.Context, id string) error
}

type Handlers struct {
	Users Store
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Users.List(r.Context())
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (h Handlers) Put(w http.ResponseWriter, r *http.Request) {
	id, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	var p Profile
	if err := api.Decode(r, &p); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	u, err := h.Users.UpdateProfile(r.Context(), id, p)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	if p := api.PrincipalFromContext(r.Context()); p != nil && p.UserID == id {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "cannot delete your own account")
		return
	}
	if err := h.Users.Delete(r.Context(), id); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h Handlers) selfOrAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return "", false
	}
	if !api.PrincipalFromContext(r.Context()).Owns(id, role.ManageUsers) {
		api.WriteFailure(w, r, role.ErrForbidden)
		return "", false
	}
	return id, true
}
