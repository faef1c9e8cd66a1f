package impl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"solvibe/internal/domain"
	"solvibe/internal/dto"
	"solvibe/internal/service"
	"solvibe/internal/store"

	"github.com/google/uuid"
)

type PostServiceImpl struct {
	Store   postData
	Members service.MembershipService
}

func NewPostServiceImpl(st *store.Store, members service.MembershipService) *PostServiceImpl {
	return &PostServiceImpl{Store: postStoreAdapter{store: st}, Members: members}
}

type postData interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	ListVisible(ctx context.Context, requesterID *uuid.UUID, subscribedCreatorIDs []uuid.UUID) ([]domain.Post, error)
}

type postStoreAdapter struct {
	store *store.Store
}

func (a postStoreAdapter) Create(ctx context.Context, post *domain.Post) error {
	return a.store.Posts().Create(ctx, post)
}

func (a postStoreAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	return a.store.Posts().GetByID(ctx, id)
}

func (a postStoreAdapter) ListVisible(ctx context.Context, requesterID *uuid.UUID, subscribedCreatorIDs []uuid.UUID) ([]domain.Post, error) {
	return a.store.Posts().ListVisible(ctx, requesterID, subscribedCreatorIDs)
}

func (p *PostServiceImpl) Create(ctx context.Context, caller domain.Identity, r dto.CreatePostRequest) (*domain.Post, error) {
	if strings.TrimSpace(r.Content) == "" {
		return nil, fmt.Errorf("%w: empty content", domain.ErrInvalidArgument)
	}
	level := r.AccessLevel
	if level == "" {
		level = domain.AccessPublic
	}
	if !level.Valid() {
		return nil, fmt.Errorf("%w: access level must be public or members_only", domain.ErrInvalidArgument)
	}

	post := &domain.Post{
		CreatorID:     caller.UserID,
		WalletAddress: caller.WalletAddress,
		Content:       r.Content,
		Image:         r.Image,
		NftURI:        r.NftURI,
		AccessLevel:   level,
	}
	if err := p.Store.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (p *PostServiceImpl) Get(ctx context.Context, id uuid.UUID, requesterID *uuid.UUID) (*domain.Post, error) {
	post, err := p.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrPostGone
		}
		return nil, err
	}

	dec, err := p.CanView(ctx, post, requesterID)
	if err != nil {
		return nil, err
	}
	if !dec.Allowed {
		if requesterID == nil {
			return nil, ErrLoginRequired
		}
		return nil, ErrNotSubscribed
	}
	return post, nil
}

func (p *PostServiceImpl) List(ctx context.Context, requesterID *uuid.UUID) ([]domain.Post, error) {
	if requesterID == nil {
		return p.Store.ListVisible(ctx, nil, nil)
	}
	creatorIDs, err := p.Members.SubscribedCreatorIDs(ctx, *requesterID)
	if err != nil {
		return nil, err
	}
	return p.Store.ListVisible(ctx, requesterID, creatorIDs)
}

// CanView applies the visibility rule in order: public is always visible,
// gated content needs a caller, creators always see their own, anyone else
// needs a membership edge to the creator.
func (p *PostServiceImpl) CanView(ctx context.Context, post *domain.Post, requesterID *uuid.UUID) (service.Decision, error) {
	if post.AccessLevel == domain.AccessPublic {
		return service.Allow, nil
	}
	if requesterID == nil {
		return service.Deny("login required"), nil
	}
	if *requesterID == post.CreatorID {
		return service.Allow, nil
	}
	member, err := p.Members.IsMember(ctx, *requesterID, post.CreatorID)
	if err != nil {
		return service.Decision{}, err
	}
	if !member {
		return service.Deny("membership required"), nil
	}
	return service.Allow, nil
}
