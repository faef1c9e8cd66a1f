package service

import (
	"context"

	"solvibe/internal/domain"
	"solvibe/internal/dto"

	"github.com/google/uuid"
)

// Decision is the outcome of a visibility check.
type Decision struct {
	Allowed bool
	Reason  string
}

var Allow = Decision{Allowed: true}

func Deny(reason string) Decision { return Decision{Reason: reason} }

type PostService interface {
	Create(ctx context.Context, caller domain.Identity, r dto.CreatePostRequest) (*domain.Post, error)

	// Get loads a post and enforces visibility for the optional requester.
	// Deny maps to domain.ErrUnauthorized (no requester) or
	// domain.ErrForbidden (requester without membership).
	Get(ctx context.Context, id uuid.UUID, requesterID *uuid.UUID) (*domain.Post, error)

	// List returns everything the requester may see as a single query-shaped
	// operation, never a per-item visibility loop.
	List(ctx context.Context, requesterID *uuid.UUID) ([]domain.Post, error)

	// CanView applies the visibility rule to an already-loaded post.
	CanView(ctx context.Context, post *domain.Post, requesterID *uuid.UUID) (Decision, error)
}
