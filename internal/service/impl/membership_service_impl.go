package impl

import (
	"context"
	"errors"
	"log/slog"

	"solvibe/internal/domain"
	"solvibe/internal/observability/metrics"
	"solvibe/internal/observability/middleware"
	"solvibe/internal/store"

	"github.com/google/uuid"
)

type MembershipServiceImpl struct {
	Store membershipData
}

func NewMembershipServiceImpl(st *store.Store) *MembershipServiceImpl {
	return &MembershipServiceImpl{Store: membershipStoreAdapter{store: st}}
}

type membershipData interface {
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	CreateEdge(ctx context.Context, edge *domain.Membership) error
	EdgeExists(ctx context.Context, subscriberID, creatorID uuid.UUID) (bool, error)
	CreatorIDsFor(ctx context.Context, subscriberID uuid.UUID) ([]uuid.UUID, error)
}

type membershipStoreAdapter struct {
	store *store.Store
}

func (a membershipStoreAdapter) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := a.store.Users().GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a membershipStoreAdapter) CreateEdge(ctx context.Context, edge *domain.Membership) error {
	return a.store.Memberships().Create(ctx, edge)
}

func (a membershipStoreAdapter) EdgeExists(ctx context.Context, subscriberID, creatorID uuid.UUID) (bool, error) {
	return a.store.Memberships().Exists(ctx, subscriberID, creatorID)
}

func (a membershipStoreAdapter) CreatorIDsFor(ctx context.Context, subscriberID uuid.UUID) ([]uuid.UUID, error) {
	return a.store.Memberships().CreatorIDsFor(ctx, subscriberID)
}

func (m *MembershipServiceImpl) Subscribe(ctx context.Context, subscriberID, creatorID uuid.UUID) (*domain.Membership, error) {
	result := "success"
	defer func() {
		metrics.SubscriptionsTotal.WithLabelValues(result).Inc()
	}()

	// Rejected regardless of whether the id resolves to anyone.
	if subscriberID == creatorID {
		result = "failure"
		return nil, ErrSelfSubscribe
	}

	exists, err := m.Store.UserExists(ctx, creatorID)
	if err != nil {
		result = "failure"
		return nil, err
	}
	if !exists {
		result = "failure"
		return nil, ErrCreatorGone
	}

	if dup, err := m.Store.EdgeExists(ctx, subscriberID, creatorID); err != nil {
		result = "failure"
		return nil, err
	} else if dup {
		result = "failure"
		return nil, ErrAlreadyMember
	}

	edge := &domain.Membership{SubscriberID: subscriberID, CreatorID: creatorID}
	if err := m.Store.CreateEdge(ctx, edge); err != nil {
		result = "failure"
		// The unique (subscriber, creator) index settles the race.
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	slog.Info("subscription created",
		"subscriber_id", subscriberID,
		"creator_id", creatorID,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return edge, nil
}

// IsMember is a plain existence check: missing or unknown ids read as false,
// never as an error.
func (m *MembershipServiceImpl) IsMember(ctx context.Context, subscriberID, creatorID uuid.UUID) (bool, error) {
	if subscriberID == uuid.Nil || creatorID == uuid.Nil {
		return false, nil
	}
	return m.Store.EdgeExists(ctx, subscriberID, creatorID)
}

func (m *MembershipServiceImpl) SubscribedCreatorIDs(ctx context.Context, subscriberID uuid.UUID) ([]uuid.UUID, error) {
	if subscriberID == uuid.Nil {
		return nil, nil
	}
	return m.Store.CreatorIDsFor(ctx, subscriberID)
}
