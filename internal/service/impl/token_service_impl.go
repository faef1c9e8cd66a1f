package impl

import (
	"context"
	"fmt"
	"time"

	"solvibe/internal/domain"
	"solvibe/internal/observability/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ====== Config ======

type TokenConfig struct {
	Issuer     string        // e.g. "solvibe"
	Audience   string        // e.g. "solvibe-clients"
	AccessTTL  time.Duration // e.g. time.Hour
	SigningKey []byte        // HS256 shared secret
}

// ====== Claims ======

// SessionClaims is the wire payload of a session token: the verified identity
// (subject id, wallet address, username) plus the standard expiry claims.
type SessionClaims struct {
	WalletAddress string `json:"walletAddress"`
	Username      string `json:"username"`
	jwt.RegisteredClaims
}

// ====== Service ======

// TokenServiceImpl mints and validates stateless HS256 session tokens. No
// session row is written; a token expires on its own and cannot be revoked.
type TokenServiceImpl struct {
	cfg TokenConfig
}

func NewTokenServiceHS256(cfg TokenConfig) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg}
}

func (t *TokenServiceImpl) Issue(_ context.Context, user *domain.User) (string, error) {
	result := "success"
	defer func() {
		metrics.SessionsIssuedTotal.WithLabelValues(result).Inc()
	}()
	now := time.Now().UTC()

	claims := SessionClaims{
		WalletAddress: user.WalletAddress,
		Username:      user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.cfg.SigningKey)
	if err != nil {
		result = "failure"
		return "", err
	}
	return signed, nil
}

func (t *TokenServiceImpl) Parse(_ context.Context, tokenStr string) (*domain.Identity, error) {
	claims := &SessionClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	// Enforce issuer/audience manually (kept explicit for clarity).
	if claims.Issuer != t.cfg.Issuer {
		return nil, fmt.Errorf("%w: bad issuer", domain.ErrUnauthorized)
	}
	if !containsAudience(claims.Audience, t.cfg.Audience) {
		return nil, fmt.Errorf("%w: bad audience", domain.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	return &domain.Identity{
		UserID:        userID,
		WalletAddress: claims.WalletAddress,
		Username:      claims.Username,
	}, nil
}

// containsAudience checks if the expected audience is present in the claim audience list.
func containsAudience(aud jwt.ClaimStrings, expected string) bool {
	for _, a := range aud {
		if a == expected {
			return true
		}
	}
	return false
}
