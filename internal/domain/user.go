package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WalletAddress string    `gorm:"type:text;uniqueIndex:ux_users_wallet" json:"walletAddress"`
	Username      string    `gorm:"type:citext;uniqueIndex:ux_users_username" json:"username"`
	Name          string    `gorm:"type:text;not null" json:"name"`
	Bio           string    `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Identity is the authenticated caller asserted by a verified session token.
// It is threaded explicitly into every operation that needs the caller; nothing
// reads it out of ambient state.
type Identity struct {
	UserID        uuid.UUID `json:"userId"`
	WalletAddress string    `json:"walletAddress"`
	Username      string    `json:"username"`
}
