package store

import (
	"context"
	"fmt"

	"solvibe/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostStore struct{ db *gorm.DB }

func (s *Store) Posts() *PostStore { return &PostStore{db: s.DB} }

func (p *PostStore) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return translate(p.db.WithContext(ctx).Create(post).Error)
}

func (p *PostStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	if err := p.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// ListVisible returns posts the requester may see as one query: all public
// posts plus members-only posts whose creator is the requester or in the
// requester's subscribed set. A nil requester sees only public posts.
func (p *PostStore) ListVisible(ctx context.Context, requesterID *uuid.UUID, subscribedCreatorIDs []uuid.UUID) ([]domain.Post, error) {
	q := p.db.WithContext(ctx).Model(&domain.Post{}).Order("created_at DESC")
	if requesterID == nil {
		q = q.Where("access_level = ?", domain.AccessPublic)
	} else if len(subscribedCreatorIDs) == 0 {
		q = q.Where("access_level = ? OR creator_id = ?", domain.AccessPublic, *requesterID)
	} else {
		q = q.Where("access_level = ? OR creator_id = ? OR creator_id IN ?",
			domain.AccessPublic, *requesterID, subscribedCreatorIDs)
	}

	var posts []domain.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

func counterColumn(t domain.VoteType) (string, error) {
	switch t {
	case domain.VoteUp:
		return "upvotes_count", nil
	case domain.VoteDown:
		return "downvotes_count", nil
	default:
		return "", fmt.Errorf("unknown vote type %q", t)
	}
}

// AddVoteCount applies an atomic +1 to the counter for t. Increments from
// different actors commute, so no read-modify-write is involved.
func (p *PostStore) AddVoteCount(ctx context.Context, postID uuid.UUID, t domain.VoteType) error {
	col, err := counterColumn(t)
	if err != nil {
		return err
	}
	res := p.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ?", postID).
		UpdateColumn(col, gorm.Expr(col+" + 1"))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SubVoteCount applies an atomic -1 to the counter for t, guarded so the
// counter can never go negative. A zero-row update means the guard tripped:
// the counter disagreed with the ledger.
func (p *PostStore) SubVoteCount(ctx context.Context, postID uuid.UUID, t domain.VoteType) error {
	col, err := counterColumn(t)
	if err != nil {
		return err
	}
	res := p.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ? AND "+col+" > 0", postID).
		UpdateColumn(col, gorm.Expr(col+" - 1"))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCounterUnderflow
	}
	return nil
}

// RecountVotes re-derives both counters from the live vote rows. Used to
// reconcile after an underflow rather than leaving an inflated aggregate.
func (p *PostStore) RecountVotes(ctx context.Context, postID uuid.UUID) error {
	return translate(p.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ?", postID).
		UpdateColumns(map[string]interface{}{
			"upvotes_count": gorm.Expr(
				"(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id AND votes.type = ?)", domain.VoteUp),
			"downvotes_count": gorm.Expr(
				"(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id AND votes.type = ?)", domain.VoteDown),
		}).Error)
}

// Counters reads the current aggregates for a post.
func (p *PostStore) Counters(ctx context.Context, postID uuid.UUID) (upvotes, downvotes int, err error) {
	var post domain.Post
	if err := p.db.WithContext(ctx).Select("upvotes_count", "downvotes_count").
		First(&post, "id = ?", postID).Error; err != nil {
		return 0, 0, translate(err)
	}
	return post.UpvotesCount, post.DownvotesCount, nil
}
