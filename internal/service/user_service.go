package service

import (
	"context"

	"solvibe/internal/domain"

	"github.com/google/uuid"
)

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
