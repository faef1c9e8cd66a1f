package service

import (
	"context"

	"solvibe/internal/domain"
	"solvibe/internal/dto"
)

type AuthService interface {
	CheckWallet(ctx context.Context, walletAddress string) (*dto.CheckWalletResponse, error)
	Register(ctx context.Context, r dto.RegisterRequest) (*domain.User, error)
	RequestChallenge(ctx context.Context, walletAddress string) (*dto.ChallengeResponse, error)
	Verify(ctx context.Context, r dto.VerifyRequest, ip, ua string) (*dto.VerifyResponse, error)
}
