package hotel

import (
	"net/http"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

type Handlers struct {
	Hotels *Service
}

func (h Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	var in Submission
	if err := api.Decode(r, &in); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	created, err := h.Hotels.Submit(r.Context(), p.UserID, in)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, created)
}

func (h Handlers) Approved(w http.ResponseWriter, r *http.Request) {
	items, err := h.Hotels.Approved(r.Context())
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	var filter *workflow.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := workflow.Hotel.Parse(raw)
		if err != nil {
			api.WriteFailure(w, r, api.Invalid("invalid status", "status"))
			return
		}
		filter = &st
	}
	items, err := h.Hotels.List(r.Context(), filter)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Mine(w http.ResponseWriter, r *http.Request) {
	items, err := h.Hotels.Mine(r.Context(), api.PrincipalFromContext(r.Context()).UserID)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	got, err := h.Hotels.Get(r.Context(), id)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, got)
}

func (h Handlers) Put(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	var c Changes
	if err := api.Decode(r, &c); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	updated, err := h.Hotels.Update(r.Context(), api.PrincipalFromContext(r.Context()), id, c)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
}

func (h Handlers) AddMedia(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	var m Media
	if err := api.Decode(r, &m); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	updated, err := h.Hotels.AddMedia(r.Context(), api.PrincipalFromContext(r.Context()), id, m)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
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
	reviewed, err := h.Hotels.Review(r.Context(), api.PrincipalFromContext(r.Context()).UserID, id, to)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, reviewed)
}

// Revert is called by the admin UI to put a hotelier back to pending. No
// semantics are defined for it yet, so it answers 501.
func (h Handlers) Revert(w http.ResponseWriter, r *http.Request) {
	api.WriteError(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "reverting a reviewed hotel is not supported")
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	if err := h.Hotels.Delete(r.Context(), id); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h Handlers) History(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	items, err := h.Hotels.Transitions(r.Context(), id)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
