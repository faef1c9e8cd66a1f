package dto

import "solvibe/internal/domain"

type CreatePostRequest struct {
	Content     string                 `json:"content"`
	Image       string                 `json:"image,omitempty"`
	NftURI      string                 `json:"nftUri,omitempty"`
	AccessLevel domain.PostAccessLevel `json:"accessLevel,omitempty"`
}

type SubscribeRequest struct {
	CreatorUserID string `json:"creatorUserId"`
}
