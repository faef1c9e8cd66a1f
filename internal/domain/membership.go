package domain

import (
	"time"

	"github.com/google/uuid"
)

// Membership is a directed subscriber → creator edge. Edges are only ever
// created; the unique index keeps the pair a set, not a multiset.
type Membership struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_memberships_edge" json:"subscriberId"`
	CreatorID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_memberships_edge" json:"creatorId"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}

func (Membership) TableName() string { return "memberships" }
