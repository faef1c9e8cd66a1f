package impl

import (
	"fmt"

	"solvibe/internal/domain"
)

var (
	ErrWalletTaken   = fmt.Errorf("%w: wallet address already registered", domain.ErrConflict)
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", domain.ErrConflict)
	ErrStaleMessage  = fmt.Errorf("%w: stale message", domain.ErrUnauthorized)
	ErrBadSignature  = fmt.Errorf("%w: bad signature", domain.ErrUnauthorized)
	ErrSelfSubscribe = fmt.Errorf("%w: cannot subscribe to yourself", domain.ErrInvalidArgument)
	ErrCreatorGone   = fmt.Errorf("%w: creator", domain.ErrNotFound)
	ErrAlreadyMember = fmt.Errorf("%w: already subscribed", domain.ErrConflict)
	ErrPostGone      = fmt.Errorf("%w: post", domain.ErrNotFound)
	ErrUserGone      = fmt.Errorf("%w: user", domain.ErrNotFound)
	ErrBadVoteType   = fmt.Errorf("%w: vote type must be upvote or downvote", domain.ErrInvalidArgument)
	ErrLoginRequired = fmt.Errorf("%w: login required", domain.ErrUnauthorized)
	ErrNotSubscribed = fmt.Errorf("%w: membership required", domain.ErrForbidden)
)
