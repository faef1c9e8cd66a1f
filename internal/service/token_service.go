package service

import (
	"context"

	"solvibe/internal/domain"
)

type TokenService interface {
	// Issue mints a stateless session token bound to the user's id, wallet
	// address and username. There is no server-side session row; validity is
	// purely cryptographic and time-bound.
	Issue(ctx context.Context, user *domain.User) (string, error)

	// Parse validates a presented token and returns the identity it asserts.
	// Expired, tampered or otherwise invalid tokens fail with
	// domain.ErrUnauthorized.
	Parse(ctx context.Context, token string) (*domain.Identity, error)
}
