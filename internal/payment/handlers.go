package payment

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/booking"
	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/config"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/khalti"
)

type Gateway interface {
	Initiate(ctx context.Context, req khalti.InitiateRequest) (*khalti.InitiateResponse, json.RawMessage, error)
	Lookup(ctx context.Context, pidx string) (*khalti.LookupResponse, json.RawMessage, error)
}

type Bookings interface {
	Get(ctx context.Context, p *api.Principal, id string) (*booking.View, error)
	AttachPayment(ctx context.Context, bookingID, ref string) error
	SettlePayment(ctx context.Context, ref string, to workflow.Status) (*booking.Booking, error)
}

type Handlers struct {
	Cfg      config.KhaltiConfig
	Gateway  Gateway
	Bookings Bookings
}

type initiateRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid"`
}

type verifyRequest struct {
	Pidx string `json:"pidx" validate:"required"`
}

// Initiate starts a Khalti checkout for a pending booking and stores the
// returned pidx on it. The provider response is returned as-is.
func (h Handlers) Initiate(w http.ResponseWriter, r *http.Request) {
	var in initiateRequest
	if err := api.Decode(r, &in); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	ctx := r.Context()
	b, err := h.Bookings.Get(ctx, api.PrincipalFromContext(ctx), in.BookingID)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	if b.PaymentStatus != workflow.StatusPending {
		api.WriteFailure(w, r, &workflow.TransitionError{Entity: workflow.Payment.Entity, From: b.PaymentStatus, To: workflow.StatusPending})
		return
	}

	resp, raw, err := h.Gateway.Initiate(ctx, khalti.InitiateRequest{
		ReturnURL:         h.Cfg.ReturnURL,
		WebsiteURL:        h.Cfg.WebsiteURL,
		Amount:            khalti.ToPaisa(b.TotalPrice),
		PurchaseOrderID:   b.ID,
		PurchaseOrderName: "Booking at " + b.Hotel.Name,
		CustomerInfo:      &khalti.CustomerInfo{Name: b.User.Name, Email: b.User.Email},
	})
	if err != nil {
		providerFailure(w, r, raw, err)
		return
	}
	if err := h.Bookings.AttachPayment(ctx, b.ID, resp.Pidx); err != nil {
		api.WriteFailure(w, r, err)
		return
	}

	logger.FromContext(ctx).Info("payment initiated", "booking_id", b.ID, "pidx", resp.Pidx)
	api.WriteJSON(w, http.StatusOK, raw)
}

// Verify looks the payment up with Khalti and settles the booking when the
// provider reports a final outcome.
func (h Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	var in verifyRequest
	if err := api.Decode(r, &in); err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	ctx := r.Context()
	resp, raw, err := h.Gateway.Lookup(ctx, in.Pidx)
	if err != nil {
		providerFailure(w, r, raw, err)
		return
	}

	if to, ok := Outcome(resp.Status); ok {
		if _, err := h.Bookings.SettlePayment(ctx, in.Pidx, to); err != nil {
			api.WriteFailure(w, r, err)
			return
		}
	} else {
		logger.FromContext(ctx).Info("payment not final", "pidx", in.Pidx, "provider_status", resp.Status)
	}
	api.WriteJSON(w, http.StatusOK, raw)
}

// Outcome maps a Khalti lookup status to a booking payment status. Pending and
// Initiated are not final.
func Outcome(providerStatus string) (workflow.Status, bool) {
	switch providerStatus {
	case khalti.StatusCompleted:
		return workflow.StatusPaid, true
	case khalti.StatusExpired, khalti.StatusUserCanceled:
		return workflow.StatusFailed, true
	case khalti.StatusRefunded:
		return workflow.StatusRefunded, true
	default:
		return "", false
	}
}

func providerFailure(w http.ResponseWriter, r *http.Request, raw json.RawMessage, err error) {
	logger.FromContext(r.Context()).Error("khalti request failed", "err", err)
	if len(raw) > 0 && json.Valid(raw) {
		api.WriteJSON(w, http.StatusBadGateway, raw)
		return
	}
	api.WriteError(w, http.StatusBadGateway, "PAYMENT_PROVIDER_ERROR", "payment provider unavailable")
}
