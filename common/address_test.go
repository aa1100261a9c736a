package common

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	addr := AddressFromPublicKey(pub)
	assert.True(t, IsValidAddress(addr))

	back, err := PublicKeyFromAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, pub, back)
}

func TestIsValidAddressRejects(t *testing.T) {
	assert.False(t, IsValidAddress(""))
	assert.False(t, IsValidAddress("0OIl"))
	assert.False(t, IsValidAddress(AddressFromPublicKey([]byte{1, 2, 3})))
}

func TestParsePrivateKey(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	// seed and full key forms resolve to the same holder
	addr, key, err := ParsePrivateKey(hex.EncodeToString(priv.Seed()) + "\n")
	require.NoError(t, err)
	assert.Equal(t, AddressFromPublicKey(pub), addr)
	assert.Equal(t, priv, key)

	addr2, _, err := ParsePrivateKey(hex.EncodeToString(priv))
	require.NoError(t, err)
	assert.Equal(t, addr, addr2)

	_, _, err = ParsePrivateKey("nothex")
	assert.Error(t, err)
	_, _, err = ParsePrivateKey("abcd")
	assert.Error(t, err)
}
