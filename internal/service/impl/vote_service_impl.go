package impl

import (
	"context"
	"errors"
	"log/slog"

	"solvibe/internal/domain"
	"solvibe/internal/dto"
	"solvibe/internal/observability/metrics"
	"solvibe/internal/observability/middleware"
	"solvibe/internal/store"

	"github.com/google/uuid"
)

// VoteServiceImpl drives the per-(post, voter) state machine. Every cast runs
// in one transaction so the vote row and the counter deltas commit together;
// the unique (post_id, voter_id) index arbitrates concurrent first votes, and
// the loser re-reads state and reapplies the transition once.
type VoteServiceImpl struct {
	Store voteData
}

func NewVoteServiceImpl(st *store.Store) *VoteServiceImpl {
	return &VoteServiceImpl{Store: voteStoreAdapter{store: st}}
}

type voteData interface {
	WithTx(ctx context.Context, fn func(tx voteTx) error) error
	// Recount reconciles a post's counters from its vote rows outside any
	// failed transaction.
	Recount(ctx context.Context, postID uuid.UUID) error
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Vote, error)
	ListByVoter(ctx context.Context, voterID uuid.UUID) ([]domain.Vote, error)
	PostExists(ctx context.Context, postID uuid.UUID) (bool, error)
}

type voteTx interface {
	GetPost(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	GetVote(ctx context.Context, postID, voterID uuid.UUID) (*domain.Vote, error)
	CreateVote(ctx context.Context, vote *domain.Vote) error
	UpdateVoteType(ctx context.Context, voteID uuid.UUID, t domain.VoteType) error
	DeleteVote(ctx context.Context, voteID uuid.UUID) error
	AddVoteCount(ctx context.Context, postID uuid.UUID, t domain.VoteType) error
	SubVoteCount(ctx context.Context, postID uuid.UUID, t domain.VoteType) error
	Counters(ctx context.Context, postID uuid.UUID) (upvotes, downvotes int, err error)
}

type voteStoreAdapter struct {
	store *store.Store
}

func (a voteStoreAdapter) WithTx(ctx context.Context, fn func(tx voteTx) error) error {
	return a.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(voteTxAdapter{tx: tx})
	})
}

func (a voteStoreAdapter) Recount(ctx context.Context, postID uuid.UUID) error {
	return a.store.Posts().RecountVotes(ctx, postID)
}

func (a voteStoreAdapter) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Vote, error) {
	return a.store.Votes().ListByPost(ctx, postID)
}

func (a voteStoreAdapter) ListByVoter(ctx context.Context, voterID uuid.UUID) ([]domain.Vote, error) {
	return a.store.Votes().ListByVoter(ctx, voterID)
}

func (a voteStoreAdapter) PostExists(ctx context.Context, postID uuid.UUID) (bool, error) {
	if _, err := a.store.Posts().GetByID(ctx, postID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type voteTxAdapter struct {
	tx *store.Store
}

func (a voteTxAdapter) GetPost(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	return a.tx.Posts().GetByID(ctx, id)
}

func (a voteTxAdapter) GetVote(ctx context.Context, postID, voterID uuid.UUID) (*domain.Vote, error) {
	return a.tx.Votes().GetByPostAndVoter(ctx, postID, voterID)
}

func (a voteTxAdapter) CreateVote(ctx context.Context, vote *domain.Vote) error {
	return a.tx.Votes().Create(ctx, vote)
}

func (a voteTxAdapter) UpdateVoteType(ctx context.Context, voteID uuid.UUID, t domain.VoteType) error {
	return a.tx.Votes().UpdateType(ctx, voteID, t)
}

func (a voteTxAdapter) DeleteVote(ctx context.Context, voteID uuid.UUID) error {
	return a.tx.Votes().Delete(ctx, voteID)
}

func (a voteTxAdapter) AddVoteCount(ctx context.Context, postID uuid.UUID, t domain.VoteType) error {
	return a.tx.Posts().AddVoteCount(ctx, postID, t)
}

func (a voteTxAdapter) SubVoteCount(ctx context.Context, postID uuid.UUID, t domain.VoteType) error {
	return a.tx.Posts().SubVoteCount(ctx, postID, t)
}

func (a voteTxAdapter) Counters(ctx context.Context, postID uuid.UUID) (int, int, error) {
	return a.tx.Posts().Counters(ctx, postID)
}

func (v *VoteServiceImpl) Cast(ctx context.Context, postID, voterID uuid.UUID, t domain.VoteType) (*dto.CastVoteResponse, error) {
	if !t.Valid() {
		return nil, ErrBadVoteType
	}

	resp, transition, err := v.castTx(ctx, postID, voterID, t)
	if errors.Is(err, store.ErrDuplicateKey) {
		// Lost the race for the first vote on this pair: the other writer's
		// row is now visible, so one re-read resolves the transition.
		resp, transition, err = v.castTx(ctx, postID, voterID, t)
	}
	if errors.Is(err, domain.ErrCounterUnderflow) {
		// The ledger and the aggregate disagreed; the transaction above
		// rolled back, so reconcile the counters from the rows and fail
		// loudly rather than leave an inflated aggregate.
		if rerr := v.Store.Recount(ctx, postID); rerr != nil {
			slog.Error("counter recount failed", "post_id", postID, "error", rerr)
		}
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.VotesCastTotal.WithLabelValues(transition, result).Inc()
	if err != nil {
		return nil, err
	}

	slog.Info("vote cast",
		"post_id", postID,
		"voter_id", voterID,
		"transition", transition,
		"status", resp.Status,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return resp, nil
}

func (v *VoteServiceImpl) castTx(ctx context.Context, postID, voterID uuid.UUID, t domain.VoteType) (*dto.CastVoteResponse, string, error) {
	var resp *dto.CastVoteResponse
	transition := "none"

	err := v.Store.WithTx(ctx, func(tx voteTx) error {
		if _, err := tx.GetPost(ctx, postID); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return ErrPostGone
			}
			return err
		}

		status, tr, err := applyTransition(ctx, tx, postID, voterID, t)
		if err != nil {
			return err
		}
		transition = tr

		up, down, err := tx.Counters(ctx, postID)
		if err != nil {
			return err
		}
		resp = &dto.CastVoteResponse{Status: status, UpvotesCount: up, DownvotesCount: down}
		return nil
	})
	return resp, transition, err
}

// applyTransition performs exactly one step of the state machine and the
// matching counter deltas. On a switch the old counter is decremented before
// the new one is incremented, so a partial failure reads as a removed vote,
// never a double-counted one.
func applyTransition(ctx context.Context, tx voteTx, postID, voterID uuid.UUID, t domain.VoteType) (domain.VoteStatus, string, error) {
	existing, err := tx.GetVote(ctx, postID, voterID)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		// NONE → t
		vote := &domain.Vote{PostID: postID, VoterID: voterID, Type: t}
		if err := tx.CreateVote(ctx, vote); err != nil {
			return domain.VoteStatusNone, "create", err
		}
		if err := tx.AddVoteCount(ctx, postID, t); err != nil {
			return domain.VoteStatusNone, "create", err
		}
		return domain.VoteStatus(t), "create", nil

	case err != nil:
		return domain.VoteStatusNone, "none", err

	case existing.Type == t:
		// t → NONE (un-vote)
		if err := tx.DeleteVote(ctx, existing.ID); err != nil {
			return domain.VoteStatusNone, "remove", err
		}
		if err := tx.SubVoteCount(ctx, postID, t); err != nil {
			return domain.VoteStatusNone, "remove", err
		}
		return domain.VoteStatusNone, "remove", nil

	default:
		// t.Opposite() → t (switch)
		if err := tx.UpdateVoteType(ctx, existing.ID, t); err != nil {
			return domain.VoteStatusNone, "switch", err
		}
		if err := tx.SubVoteCount(ctx, postID, existing.Type); err != nil {
			return domain.VoteStatusNone, "switch", err
		}
		if err := tx.AddVoteCount(ctx, postID, t); err != nil {
			return domain.VoteStatusNone, "switch", err
		}
		return domain.VoteStatus(t), "switch", nil
	}
}

func (v *VoteServiceImpl) ForPost(ctx context.Context, postID uuid.UUID) ([]domain.Vote, error) {
	exists, err := v.Store.PostExists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPostGone
	}
	return v.Store.ListByPost(ctx, postID)
}

func (v *VoteServiceImpl) ByVoter(ctx context.Context, voterID uuid.UUID) ([]domain.Vote, error) {
	return v.Store.ListByVoter(ctx, voterID)
}
