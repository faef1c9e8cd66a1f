package dto

import "solvibe/internal/domain"

type CheckWalletRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type CheckWalletResponse struct {
	Exists bool         `json:"exists"`
	User   *domain.User `json:"user,omitempty"`
}

type RegisterRequest struct {
	WalletAddress string `json:"walletAddress"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	Bio           string `json:"bio,omitempty"`
}

type ChallengeRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type ChallengeResponse struct {
	Message string `json:"message"`
}

type VerifyRequest struct {
	WalletAddress string `json:"walletAddress"`
	Message       string `json:"message"`
	Signature     string `json:"signature"`
}

type VerifyResponse struct {
	AccessToken string       `json:"accessToken"`
	User        *domain.User `json:"user"`
}
