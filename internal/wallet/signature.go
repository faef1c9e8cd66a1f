// Package wallet verifies detached Ed25519 signatures produced by Solana-style
// wallets. Addresses double as public keys; both keys and signatures travel
// base58-encoded.
package wallet

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// Verify reports whether signatureB58 is a valid detached Ed25519 signature
// over the exact UTF-8 bytes of message by the key behind publicKeyB58.
// Malformed base58 or wrong byte lengths are a verification failure, never a
// panic or error. Stateless and safe for concurrent use.
func Verify(message, signatureB58, publicKeyB58 string) bool {
	sig, err := base58.Decode(signatureB58)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	pub, err := base58.Decode(publicKeyB58)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig)
}
