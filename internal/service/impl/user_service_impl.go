package impl

import (
	"context"
	"errors"

	"solvibe/internal/domain"
	"solvibe/internal/store"

	"github.com/google/uuid"
)

type UserServiceImpl struct {
	Store *store.Store
}

func NewUserServiceImpl(st *store.Store) *UserServiceImpl {
	return &UserServiceImpl{Store: st}
}

func (u *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := u.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}
	return user, nil
}
