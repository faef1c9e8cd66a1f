package service

import (
	"context"

	"solvibe/internal/domain"

	"github.com/google/uuid"
)

type MembershipService interface {
	Subscribe(ctx context.Context, subscriberID, creatorID uuid.UUID) (*domain.Membership, error)
	IsMember(ctx context.Context, subscriberID, creatorID uuid.UUID) (bool, error)
	SubscribedCreatorIDs(ctx context.Context, subscriberID uuid.UUID) ([]uuid.UUID, error)
}
