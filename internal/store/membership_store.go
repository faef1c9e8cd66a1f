package store

import (
	"context"

	"solvibe/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipStore struct{ db *gorm.DB }

func (s *Store) Memberships() *MembershipStore { return &MembershipStore{db: s.DB} }

func (m *MembershipStore) Create(ctx context.Context, edge *domain.Membership) error {
	if edge.ID == uuid.Nil {
		edge.ID = uuid.New()
	}
	return translate(m.db.WithContext(ctx).Create(edge).Error)
}

func (m *MembershipStore) Exists(ctx context.Context, subscriberID, creatorID uuid.UUID) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Model(&domain.Membership{}).
		Where("subscriber_id = ? AND creator_id = ?", subscriberID, creatorID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// CreatorIDsFor returns the set of creators the subscriber follows, for the
// visibility gate's bulk predicate.
func (m *MembershipStore) CreatorIDsFor(ctx context.Context, subscriberID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := m.db.WithContext(ctx).Model(&domain.Membership{}).
		Where("subscriber_id = ?", subscriberID).
		Pluck("creator_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}
