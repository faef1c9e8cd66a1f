package service

import (
	"context"

	"solvibe/internal/domain"
	"solvibe/internal/dto"

	"github.com/google/uuid"
)

type VoteService interface {
	// Cast applies one transition of the per-(post, voter) state machine:
	// first vote inserts, same type again un-votes, the opposite type
	// switches. The vote row and counter adjustments commit together.
	Cast(ctx context.Context, postID, voterID uuid.UUID, t domain.VoteType) (*dto.CastVoteResponse, error)

	ForPost(ctx context.Context, postID uuid.UUID) ([]domain.Vote, error)
	ByVoter(ctx context.Context, voterID uuid.UUID) ([]domain.Vote, error)
}
