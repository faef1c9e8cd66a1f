// Package challenge holds the single-use login messages a wallet must sign.
// At most one challenge is live per wallet address; reissuing replaces the
// previous one, and a successful consume removes it exactly once.
package challenge

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const messagePrefix = "Sign to login SolVibe: "

// Store is an explicit key-value abstraction over the challenge map. Issue and
// Consume for the same address are linearizable: Consume observes a fully
// written Issue, and two concurrent Consume calls for the same address cannot
// both succeed.
type Store interface {
	// Issue generates a fresh message for the wallet, replacing any pending
	// challenge (last writer wins), and returns the message to be signed.
	Issue(ctx context.Context, walletAddress string) (string, error)

	// Get returns the pending message for the wallet without consuming it.
	Get(ctx context.Context, walletAddress string) (string, bool, error)

	// Consume removes the pending challenge iff it matches message byte for
	// byte, reporting whether this call performed the removal. A mismatch
	// leaves any pending challenge untouched.
	Consume(ctx context.Context, walletAddress, message string) (bool, error)
}

// NewMessage renders the fixed login template around 16 bytes of fresh
// entropy, hex encoded.
func NewMessage() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("challenge entropy: %w", err)
	}
	return messagePrefix + hex.EncodeToString(buf), nil
}
