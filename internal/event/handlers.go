package event

import (
	"net/http"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

type Handlers struct {
	Events *Service
}

func (h Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteFailure(w, r, api.ErrUnauthenticated)
		return
	}
	var in Submission
	if err := api.Decode(r, &in); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	e, err := h.Events.Submit(r.Context(), p.UserID, in)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, e)
}

func (h Handlers) Approved(w http.ResponseWriter, r *http.Request) {
	items, err := h.Events.Approved(r.Context())
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	var filter *workflow.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := workflow.Event.Parse(raw)
		if err != nil {
			api.WriteFailure(w, r, api.Invalid("invalid status", "status"))
			return
		}
		filter = &st
	}
	items, err := h.Events.List(r.Context(), filter)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, workflow.StatusApproved)
}

func (h Handlers) Decline(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, workflow.StatusDeclined)
}

func (h Handlers) review(w http.ResponseWriter, r *http.Request, to workflow.Status) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	e, err := h.Events.Review(r.Context(), api.PrincipalFromContext(r.Context()).UserID, id, to)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, e)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	if err := h.Events.Delete(r.Context(), id); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
