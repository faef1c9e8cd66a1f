package store

import (
	"context"

	"solvibe/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteStore struct{ db *gorm.DB }

func (s *Store) Votes() *VoteStore { return &VoteStore{db: s.DB} }

func (v *VoteStore) GetByPostAndVoter(ctx context.Context, postID, voterID uuid.UUID) (*domain.Vote, error) {
	var vote domain.Vote
	if err := v.db.WithContext(ctx).
		First(&vote, "post_id = ? AND voter_id = ?", postID, voterID).Error; err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

func (v *VoteStore) Create(ctx context.Context, vote *domain.Vote) error {
	if vote.ID == uuid.Nil {
		vote.ID = uuid.New()
	}
	return translate(v.db.WithContext(ctx).Create(vote).Error)
}

func (v *VoteStore) UpdateType(ctx context.Context, voteID uuid.UUID, t domain.VoteType) error {
	res := v.db.WithContext(ctx).Model(&domain.Vote{}).
		Where("id = ?", voteID).
		Update("type", t)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (v *VoteStore) Delete(ctx context.Context, voteID uuid.UUID) error {
	res := v.db.WithContext(ctx).Where("id = ?", voteID).Delete(&domain.Vote{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (v *VoteStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Vote, error) {
	var votes []domain.Vote
	if err := v.db.WithContext(ctx).
		Where("post_id = ?", postID).Order("created_at DESC").
		Find(&votes).Error; err != nil {
		return nil, translate(err)
	}
	return votes, nil
}

func (v *VoteStore) ListByVoter(ctx context.Context, voterID uuid.UUID) ([]domain.Vote, error) {
	var votes []domain.Vote
	if err := v.db.WithContext(ctx).
		Where("voter_id = ?", voterID).Order("created_at DESC").
		Find(&votes).Error; err != nil {
		return nil, translate(err)
	}
	return votes, nil
}

func (v *VoteStore) CountByPostAndType(ctx context.Context, postID uuid.UUID, t domain.VoteType) (int64, error) {
	var count int64
	err := v.db.WithContext(ctx).Model(&domain.Vote{}).
		Where("post_id = ? AND type = ?", postID, t).
		Count(&count).Error
	if err != nil {
		return 0, translate(err)
	}
	return count, nil
}
