package event

import (
	"context"
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/internal/metrics"
	"github.com/SwarupDevkota/ghumna-sub000/internal/notify"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

type Store interface {
	Create(ctx context.Context, in NewEvent) (*Event, error)
	List(ctx context.Context, status *workflow.Status) ([]Event, error)
	Delete(ctx context.Context, id string) error
	InTx(ctx context.Context, fn func(TxStore) error) error
}

type TxStore interface {
	GetForUpdate(ctx context.Context, id string) (*Event, error)
	SetStatus(ctx context.Context, id string, from, to workflow.Status) error
	RecordTransition(ctx context.Context, e audit.Entry) error
}

type Service struct {
	Store Store
	Mail  notify.Sender
}

func (s *Service) Submit(ctx context.Context, submitterID string, in Submission) (*Event, error) {
	startsAt, err := parseTime("startsAt", in.StartsAt)
	if err != nil {
		return nil, err
	}
	var endsAt *time.Time
	if in.EndsAt != "" {
		t, err := parseTime("endsAt", in.EndsAt)
		if err != nil {
			return nil, err
		}
		if t.Before(startsAt) {
			return nil, api.Invalid("event ends before it starts", "endsAt")
		}
		endsAt = &t
	}

	e, err := s.Store.Create(ctx, NewEvent{
		SubmitterID: submitterID, Title: in.Title, Description: in.Description, Location: in.Location,
		ContactEmail: in.ContactEmail, StartsAt: startsAt, EndsAt: endsAt, ImageURL: in.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("event submitted", "event_id", e.ID, "submitter_id", submitterID)
	return e, nil
}

// parseTime keeps the time of day when one is given.
func parseTime(field, s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return api.ParseDate(field, s)
}

func (s *Service) Approved(ctx context.Context) ([]Event, error) {
	st := workflow.StatusApproved
	return s.Store.List(ctx, &st)
}

func (s *Service) List(ctx context.Context, status *workflow.Status) ([]Event, error) {
	return s.Store.List(ctx, status)
}

// Review moves a Pending event to Approved or Declined and emails the contact
// address after commit.
func (s *Service) Review(ctx context.Context, actorID, id string, to workflow.Status) (*Event, error) {
	var reviewed *Event
	err := s.Store.InTx(ctx, func(tx TxStore) error {
		e, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := workflow.Event.Check(e.Status, to); err != nil {
			return err
		}
		if err := tx.SetStatus(ctx, e.ID, e.Status, to); err != nil {
			return err
		}
		actor := actorID
		if err := tx.RecordTransition(ctx, audit.Entry{
			Entity: workflow.Event.Entity, EntityID: e.ID, From: e.Status, To: to, ActorID: &actor,
		}); err != nil {
			return err
		}
		now := time.Now()
		e.Status, e.ReviewedAt = to, &now
		reviewed = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Transition(workflow.Event.Entity, string(to))
	logger.FromContext(ctx).Info("event reviewed", "event_id", id, "status", to, "actor_id", actorID)
	notify.Deliver(ctx, s.Mail, notify.EventReviewed(reviewed.ContactEmail, reviewed.Title, to == workflow.StatusApproved))
	return reviewed, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}
