package hotel

import (
	"context"
	"errors"
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/cache"
	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/internal/metrics"
	"github.com/SwarupDevkota/ghumna-sub000/internal/notify"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

const approvedCacheKey = "hotels:approved"

type Store interface {
	Create(ctx context.Context, ownerID string, in Submission) (*Hotel, error)
	Get(ctx context.Context, id string) (*Hotel, error)
	List(ctx context.Context, status *workflow.Status) ([]Hotel, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Hotel, error)
	Update(ctx context.Context, id string, c Changes) (*Hotel, error)
	AddMedia(ctx context.Context, id string, m Media) (*Hotel, error)
	Delete(ctx context.Context, id string) error
	InTx(ctx context.Context, fn func(TxStore) error) error
}

// TxStore is the write surface available inside a review transaction.
type TxStore interface {
	GetForUpdate(ctx context.Context, id string) (*Hotel, error)
	SetStatus(ctx context.Context, id string, from, to workflow.Status) error
	PromoteOwner(ctx context.Context, ownerID, hotelID string) error
	RecordTransition(ctx context.Context, e audit.Entry) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type History interface {
	ForEntity(ctx context.Context, entity, entityID string) ([]audit.Entry, error)
}

type Service struct {
	Store    Store
	Cache    Cache
	CacheTTL time.Duration
	Mail     notify.Sender
	History  History
}

func (s *Service) Submit(ctx context.Context, ownerID string, in Submission) (*Hotel, error) {
	h, err := s.Store.Create(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("hotel submitted", "hotel_id", h.ID, "owner_id", ownerID)
	return h, nil
}

// Approved is the public listing. It is served from cache when one is configured.
func (s *Service) Approved(ctx context.Context) ([]Hotel, error) {
	var cached []Hotel
	if s.Cache != nil {
		err := s.Cache.Get(ctx, approvedCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.FromContext(ctx).Warn("approved hotels cache read failed", "err", err)
		}
	}

	st := workflow.StatusApproved
	items, err := s.Store.List(ctx, &st)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, approvedCacheKey, items, s.CacheTTL); err != nil {
			logger.FromContext(ctx).Warn("approved hotels cache write failed", "err", err)
		}
	}
	return items, nil
}

func (s *Service) List(ctx context.Context, status *workflow.Status) ([]Hotel, error) {
	return s.Store.List(ctx, status)
}

func (s *Service) Get(ctx context.Context, id string) (*Hotel, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) Mine(ctx context.Context, ownerID string) ([]Hotel, error) {
	return s.Store.ListByOwner(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, p *api.Principal, id string, c Changes) (*Hotel, error) {
	if err := s.authorize(ctx, p, id); err != nil {
		return nil, err
	}
	h, err := s.Store.Update(ctx, id, c)
	if err != nil {
		return nil, err
	}
	if h.Status == workflow.StatusApproved {
		s.invalidate(ctx)
	}
	return h, nil
}

func (s *Service) AddMedia(ctx context.Context, p *api.Principal, id string, m Media) (*Hotel, error) {
	if err := s.authorize(ctx, p, id); err != nil {
		return nil, err
	}
	if m.Kind == "" {
		m.Kind = MediaImage
	}
	h, err := s.Store.AddMedia(ctx, id, m)
	if err != nil {
		return nil, err
	}
	if h.Status == workflow.StatusApproved {
		s.invalidate(ctx)
	}
	return h, nil
}

// Review moves a Pending hotel to Approved or Rejected. Approval promotes the
// owner to hotelier in the same transaction. Cache, metrics and email follow
// the commit; a failed email does not undo the review.
func (s *Service) Review(ctx context.Context, actorID, id string, to workflow.Status) (*Hotel, error) {
	var reviewed *Hotel
	err := s.Store.InTx(ctx, func(tx TxStore) error {
		h, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := workflow.Hotel.Check(h.Status, to); err != nil {
			return err
		}
		if err := tx.SetStatus(ctx, h.ID, h.Status, to); err != nil {
			return err
		}
		if to == workflow.StatusApproved {
			if err := tx.PromoteOwner(ctx, h.OwnerID, h.ID); err != nil {
				return err
			}
		}
		actor := actorID
		if err := tx.RecordTransition(ctx, audit.Entry{
			Entity: workflow.Hotel.Entity, EntityID: h.ID, From: h.Status, To: to, ActorID: &actor,
		}); err != nil {
			return err
		}
		now := time.Now()
		h.Status = to
		h.ReviewedAt = &now
		reviewed = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	metrics.Transition(workflow.Hotel.Entity, string(to))
	logger.FromContext(ctx).Info("hotel reviewed", "hotel_id", id, "status", to, "actor_id", actorID)
	notify.Deliver(ctx, s.Mail, notify.HotelReviewed(reviewed.Email, reviewed.Name, to == workflow.StatusApproved))
	return reviewed, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Transitions(ctx context.Context, id string) ([]audit.Entry, error) {
	if _, err := s.Store.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.History == nil {
		return []audit.Entry{}, nil
	}
	return s.History.ForEntity(ctx, workflow.Hotel.Entity, id)
}

// authorize allows the hotel owner or an admin.
func (s *Service) authorize(ctx context.Context, p *api.Principal, id string) error {
	if p == nil {
		return api.ErrUnauthenticated
	}
	if p.Can(role.ManageAnyHotel) {
		return nil
	}
	h, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if h.OwnerID != p.UserID {
		return role.ErrForbidden
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, approvedCacheKey); err != nil {
		logger.FromContext(ctx).Warn("approved hotels cache invalidation failed", "err", err)
	}
}
