package utils

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// ValidateAddress checks that an address is a well-formed base58 ed25519
// public key (the on-chain wallet address format).
func ValidateAddress(address string) error {
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("address is not valid base58: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return fmt.Errorf("address must decode to %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return nil
}

// VerifySignature checks a detached ed25519 signature (base58 encoded) over
// message, signed by the key behind the wallet address.
func VerifySignature(address, message, signature string) (bool, error) {
	pub, err := base58.Decode(address)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("invalid wallet address")
	}
	sig, err := base58.Decode(signature)
	if err != nil {
		return false, fmt.Errorf("signature is not valid base58: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return false, fmt.Errorf("signature must be %d bytes, got %d", ed25519.SignatureSize, len(sig))
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig), nil
}
