package common

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mezonai/token/types"
)

// AddressFromPublicKey derives the holder address of an ed25519 public key.
func AddressFromPublicKey(pub ed25519.PublicKey) types.Address {
	return types.Address(EncodeBytesToBase58(pub))
}

// PublicKeyFromAddress reverses AddressFromPublicKey.
func PublicKeyFromAddress(addr types.Address) (ed25519.PublicKey, error) {
	b, err := DecodeBase58ToBytes(string(addr))
	if err != nil {
		return nil, err
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key length %d", len(b))
	}
	return ed25519.PublicKey(b), nil
}

// IsValidAddress reports whether addr decodes to an ed25519 public key.
func IsValidAddress(addr types.Address) bool {
	_, err := PublicKeyFromAddress(addr)
	return err == nil
}

// ParsePrivateKey reads a hex encoded ed25519 seed or full private key and
// returns the key with its address.
func ParsePrivateKey(privKeyStr string) (types.Address, ed25519.PrivateKey, error) {
	privBytes, err := hex.DecodeString(strings.TrimSpace(privKeyStr))
	if err != nil {
		return "", nil, fmt.Errorf("private key is not hex: %w", err)
	}
	if len(privBytes) != ed25519.SeedSize && len(privBytes) != ed25519.PrivateKeySize {
		return "", nil, fmt.Errorf("invalid private key length %d", len(privBytes))
	}

	private := ed25519.NewKeyFromSeed(privBytes[:ed25519.SeedSize])
	pubKey := private.Public().(ed25519.PublicKey)
	return AddressFromPublicKey(pubKey), private, nil
}
