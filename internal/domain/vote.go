package domain

import (
	"time"

	"github.com/google/uuid"
)

type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

func (t VoteType) Valid() bool { return t == VoteUp || t == VoteDown }

func (t VoteType) Opposite() VoteType {
	if t == VoteUp {
		return VoteDown
	}
	return VoteUp
}

// Vote is the ledger row behind a post's aggregate counters. At most one live
// row exists per (post, voter); the unique index enforces that as a hard
// constraint, not a convention.
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_votes_post_voter" json:"postId"`
	VoterID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_votes_post_voter" json:"voterId"`
	Type      VoteType  `gorm:"type:text;not null" json:"type"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Vote) TableName() string { return "votes" }

// VoteStatus is the logical per-(post, voter) state after a cast.
type VoteStatus string

const (
	VoteStatusNone VoteStatus = "none"
	VoteStatusUp   VoteStatus = VoteStatus(VoteUp)
	VoteStatusDown VoteStatus = VoteStatus(VoteDown)
)
