package availability

import (
	"net/http"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

type Handlers struct {
	Requests *Service
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	a, err := h.Requests.Create(r.Context(), api.PrincipalFromContext(r.Context()), req)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, a)
}

// ForHotel serves both /api/booking/requests/hotel/{id} and /api/hotels/{id}/requests.
func (h Handlers) ForHotel(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	items, err := h.Requests.ForHotel(r.Context(), api.PrincipalFromContext(r.Context()), id)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) ForUser(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	items, err := h.Requests.ForUser(r.Context(), api.PrincipalFromContext(r.Context()), id)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, workflow.StatusApproved)
}

func (h Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, workflow.StatusRejected)
}

func (h Handlers) review(w http.ResponseWriter, r *http.Request, to workflow.Status) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	v, err := h.Requests.Review(r.Context(), api.PrincipalFromContext(r.Context()), id, to)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, v)
}
