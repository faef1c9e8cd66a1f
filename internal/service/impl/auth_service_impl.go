package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"solvibe/internal/challenge"
	"solvibe/internal/domain"
	"solvibe/internal/dto"
	"solvibe/internal/observability/metrics"
	"solvibe/internal/observability/middleware"
	"solvibe/internal/service"
	"solvibe/internal/store"
)

// VerifySignatureFunc is the pure signature check injected at construction
// time; see internal/wallet.Verify for the production implementation.
type VerifySignatureFunc func(message, signatureB58, publicKeyB58 string) bool

type AuthServiceImpl struct {
	Users      userDirectory
	Challenges challenge.Store
	VerifySig  VerifySignatureFunc
	Tokens     service.TokenService
}

func NewAuthServiceImpl(st *store.Store, challenges challenge.Store, verify VerifySignatureFunc, tokens service.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{
		Users:      userStoreAdapter{store: st},
		Challenges: challenges,
		VerifySig:  verify,
		Tokens:     tokens,
	}
}

// userDirectory is the slice of the store this service needs; tests swap in a
// memory fake.
type userDirectory interface {
	Create(ctx context.Context, u *domain.User) error
	GetByWalletAddress(ctx context.Context, walletAddress string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type userStoreAdapter struct {
	store *store.Store
}

func (a userStoreAdapter) Create(ctx context.Context, u *domain.User) error {
	return a.store.Users().Create(ctx, u)
}

func (a userStoreAdapter) GetByWalletAddress(ctx context.Context, walletAddress string) (*domain.User, error) {
	return a.store.Users().GetByWalletAddress(ctx, walletAddress)
}

func (a userStoreAdapter) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return a.store.Users().GetByUsername(ctx, username)
}

func (a *AuthServiceImpl) CheckWallet(ctx context.Context, walletAddress string) (*dto.CheckWalletResponse, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return nil, fmt.Errorf("%w: empty wallet address", domain.ErrInvalidArgument)
	}
	user, err := a.Users.GetByWalletAddress(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return &dto.CheckWalletResponse{Exists: false}, nil
		}
		return nil, err
	}
	return &dto.CheckWalletResponse{Exists: true, User: user}, nil
}

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*domain.User, error) {
	result := "success"
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	r.WalletAddress = strings.TrimSpace(r.WalletAddress)
	r.Username = strings.TrimSpace(r.Username)
	if r.WalletAddress == "" || r.Username == "" || r.Name == "" {
		result = "failure"
		return nil, fmt.Errorf("%w: walletAddress, username and name are required", domain.ErrInvalidArgument)
	}

	if _, err := a.Users.GetByWalletAddress(ctx, r.WalletAddress); err == nil {
		result = "failure"
		return nil, ErrWalletTaken
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		result = "failure"
		return nil, err
	}
	if _, err := a.Users.GetByUsername(ctx, r.Username); err == nil {
		result = "failure"
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		result = "failure"
		return nil, err
	}

	u := &domain.User{
		WalletAddress: r.WalletAddress,
		Username:      r.Username,
		Name:          r.Name,
		Bio:           r.Bio,
	}
	if err := a.Users.Create(ctx, u); err != nil {
		result = "failure"
		// The unique indexes arbitrate races the pre-checks missed.
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrWalletTaken
		}
		return nil, err
	}

	slog.Info("registered user",
		"user_id", u.ID,
		"username", u.Username,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return u, nil
}

func (a *AuthServiceImpl) RequestChallenge(ctx context.Context, walletAddress string) (*dto.ChallengeResponse, error) {
	result := "success"
	defer func() {
		metrics.ChallengesIssuedTotal.WithLabelValues(result).Inc()
	}()

	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		result = "failure"
		return nil, fmt.Errorf("%w: empty wallet address", domain.ErrInvalidArgument)
	}
	msg, err := a.Challenges.Issue(ctx, walletAddress)
	if err != nil {
		result = "failure"
		return nil, err
	}
	return &dto.ChallengeResponse{Message: msg}, nil
}

// Verify completes the login flow: identity lookup, stale-message rejection
// (string equality before any cryptographic work), signature check, then the
// atomic consume that makes the challenge single use.
func (a *AuthServiceImpl) Verify(ctx context.Context, r dto.VerifyRequest, ip, ua string) (*dto.VerifyResponse, error) {
	result := "success"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	user, err := a.Users.GetByWalletAddress(ctx, r.WalletAddress)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}

	stored, ok, err := a.Challenges.Get(ctx, r.WalletAddress)
	if err != nil {
		result = "failure"
		return nil, err
	}
	if !ok || stored != r.Message {
		result = "failure"
		return nil, ErrStaleMessage
	}

	if !a.VerifySig(r.Message, r.Signature, r.WalletAddress) {
		result = "failure"
		return nil, ErrBadSignature
	}

	// Commit point: at most one concurrent verify can win this removal.
	consumed, err := a.Challenges.Consume(ctx, r.WalletAddress, r.Message)
	if err != nil {
		result = "failure"
		return nil, err
	}
	if !consumed {
		result = "failure"
		return nil, ErrStaleMessage
	}

	token, err := a.Tokens.Issue(ctx, user)
	if err != nil {
		result = "failure"
		return nil, err
	}

	slog.Info("wallet login verified",
		"user_id", user.ID,
		"username", user.Username,
		"ip", ip,
		"user_agent", ua,
		"request_id", middleware.RequestIDFromContext(ctx),
		"trace_id", middleware.TraceIDFromContext(ctx),
	)
	return &dto.VerifyResponse{AccessToken: token, User: user}, nil
}
