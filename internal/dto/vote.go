package dto

import "solvibe/internal/domain"

type CastVoteRequest struct {
	PostID string          `json:"postId"`
	Type   domain.VoteType `json:"type"`
}

// CastVoteResponse carries the resulting (post, voter) state and the post's
// updated aggregates, read inside the same transaction that applied them.
type CastVoteResponse struct {
	Status         domain.VoteStatus `json:"status"`
	UpvotesCount   int               `json:"upvotesCount"`
	DownvotesCount int               `json:"downvotesCount"`
}
