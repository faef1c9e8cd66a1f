package domain

import (
	"time"

	"github.com/google/uuid"
)

type PostAccessLevel string

const (
	AccessPublic      PostAccessLevel = "public"
	AccessMembersOnly PostAccessLevel = "members_only"
)

func (l PostAccessLevel) Valid() bool {
	return l == AccessPublic || l == AccessMembersOnly
}

type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID uuid.UUID `gorm:"type:uuid;index;not null" json:"creatorId"`
	// Creator wallet at posting time, denormalized for display and minting.
	WalletAddress string          `gorm:"type:text;not null" json:"walletAddress"`
	Content       string          `gorm:"type:text;not null" json:"content"`
	Image         string          `gorm:"type:text" json:"image,omitempty"`
	NftURI        string          `gorm:"type:text" json:"nftUri,omitempty"`
	AccessLevel   PostAccessLevel `gorm:"type:text;not null;default:public" json:"accessLevel"`

	// Aggregate counters. Only the vote service may touch these, and only via
	// the store's atomic add/sub updates; they must always equal the live row
	// counts of each vote type.
	UpvotesCount   int `gorm:"not null;default:0" json:"upvotesCount"`
	DownvotesCount int `gorm:"not null;default:0" json:"downvotesCount"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }
