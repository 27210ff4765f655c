package availability

import (
	"context"
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/internal/metrics"
	"github.com/SwarupDevkota/ghumna-sub000/internal/notify"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

type Store interface {
	Create(ctx context.Context, in NewRequest) (*Request, error)
	Get(ctx context.Context, id string) (*View, error)
	ListByHotel(ctx context.Context, hotelID string) ([]View, error)
	ListByUser(ctx context.Context, userID string) ([]View, error)
	InTx(ctx context.Context, fn func(TxStore) error) error
}

type TxStore interface {
	GetForUpdate(ctx context.Context, id string) (*Request, error)
	SetStatus(ctx context.Context, id string, from, to workflow.Status) error
	AddRequest(ctx context.Context, userID, requestID string) error
	RecordTransition(ctx context.Context, e audit.Entry) error
}

type HotelOwners interface {
	OwnerOf(ctx context.Context, hotelID string) (string, error)
}

type Service struct {
	Store  Store
	Hotels HotelOwners
	Mail   notify.Sender
}

func (s *Service) Create(ctx context.Context, p *api.Principal, req CreateRequest) (*Request, error) {
	if p == nil {
		return nil, api.ErrUnauthenticated
	}
	if req.UserID == "" {
		req.UserID = p.UserID
	}
	if !p.Owns(req.UserID, role.ManageUsers) {
		return nil, role.ErrForbidden
	}

	status := workflow.StatusPending
	if req.Status != "" {
		st, err := workflow.AvailabilityRequest.Parse(req.Status)
		if err != nil || (st != workflow.StatusPending && st != workflow.StatusCompleted) {
			return nil, api.Invalid("invalid status", "status")
		}
		status = st
	}
	checkIn, err := api.ParseDate("checkIn", req.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := api.ParseDate("checkOut", req.CheckOut)
	if err != nil {
		return nil, err
	}
	rooms := req.Rooms
	if rooms == 0 {
		rooms = 1
	}

	a, err := s.Store.Create(ctx, NewRequest{
		HotelID: req.HotelID, UserID: req.UserID, CheckIn: checkIn, CheckOut: checkOut,
		Guests: req.Guests, Rooms: rooms, Criteria: req.Criteria, Status: status,
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("availability requested", "request_id", a.ID, "hotel_id", a.HotelID, "user_id", a.UserID)
	return a, nil
}

func (s *Service) ForHotel(ctx context.Context, p *api.Principal, hotelID string) ([]View, error) {
	if err := s.canAnswer(ctx, p, hotelID); err != nil {
		return nil, err
	}
	return s.Store.ListByHotel(ctx, hotelID)
}

func (s *Service) ForUser(ctx context.Context, p *api.Principal, userID string) ([]View, error) {
	if !p.Owns(userID, role.ManageUsers) {
		return nil, role.ErrForbidden
	}
	return s.Store.ListByUser(ctx, userID)
}

// Review answers a request. Approval appends it to the requester's list in the
// same transaction; the requester is emailed after commit.
func (s *Service) Review(ctx context.Context, p *api.Principal, id string, to workflow.Status) (*View, error) {
	v, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canAnswer(ctx, p, v.HotelID); err != nil {
		return nil, err
	}
	if !p.Can(role.RespondToRequests) {
		return nil, role.ErrForbidden
	}

	var from workflow.Status
	err = s.Store.InTx(ctx, func(tx TxStore) error {
		a, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := workflow.AvailabilityRequest.Check(a.Status, to); err != nil {
			return err
		}
		if err := tx.SetStatus(ctx, a.ID, a.Status, to); err != nil {
			return err
		}
		if to == workflow.StatusApproved {
			if err := tx.AddRequest(ctx, a.UserID, a.ID); err != nil {
				return err
			}
		}
		actor := p.UserID
		from = a.Status
		return tx.RecordTransition(ctx, audit.Entry{
			Entity: workflow.AvailabilityRequest.Entity, EntityID: a.ID, From: a.Status, To: to, ActorID: &actor,
		})
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	v.Status = to
	v.RespondedAt = &now
	metrics.Transition(workflow.AvailabilityRequest.Entity, string(to))
	logger.FromContext(ctx).Info("availability answered", "request_id", id, "from", from, "status", to, "actor_id", p.UserID)
	notify.Deliver(ctx, s.Mail, notify.AvailabilityAnswered(v.User.Email, v.Hotel.Name,
		v.CheckIn.Format(time.DateOnly), v.CheckOut.Format(time.DateOnly), to == workflow.StatusApproved))
	return v, nil
}

// canAnswer allows the hotel owner or an admin.
func (s *Service) canAnswer(ctx context.Context, p *api.Principal, hotelID string) error {
	if p == nil {
		return api.ErrUnauthenticated
	}
	if p.Can(role.ManageAnyHotel) {
		return nil
	}
	owner, err := s.Hotels.OwnerOf(ctx, hotelID)
	if err != nil {
		return err
	}
	if owner != p.UserID {
		return role.ErrForbidden
	}
	return nil
}
