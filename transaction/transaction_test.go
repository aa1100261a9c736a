package transaction

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/common"
	"github.com/mezonai/token/jsonx"
	"github.com/mezonai/token/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) (types.Address, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return common.AddressFromPublicKey(pub), priv
}

func TestSerializeIsCanonical(t *testing.T) {
	tx := NewTransfer("alice", "bob", uint256.NewInt(50), 3)
	assert.Equal(t, "alice|bob|50|3", string(tx.Serialize()))

	tx.Signature = "ignored"
	assert.Equal(t, "alice|bob|50|3", string(tx.Serialize()))
}

func TestSignAndVerify(t *testing.T) {
	sender, priv := newKey(t)
	recipient, _ := newKey(t)

	tx := NewTransfer(sender, recipient, uint256.NewInt(1000), 1)
	require.NoError(t, tx.Validate())
	require.NoError(t, tx.Sign(priv))
	assert.True(t, tx.Verify())

	tampered := *tx
	tampered.Amount = uint256.NewInt(1001)
	assert.False(t, tampered.Verify())

	tampered = *tx
	tampered.Nonce = 2
	assert.False(t, tampered.Verify())

	tampered = *tx
	tampered.Recipient = sender
	assert.False(t, tampered.Verify())
}

func TestSignRejectsForeignKey(t *testing.T) {
	sender, _ := newKey(t)
	_, other := newKey(t)

	tx := NewTransfer(sender, sender, uint256.NewInt(1), 1)
	assert.Error(t, tx.Sign(other))
	assert.Empty(t, tx.Signature)
}

func TestVerifyRejectsBadSignatures(t *testing.T) {
	sender, priv := newKey(t)
	recipient, _ := newKey(t)
	tx := NewTransfer(sender, recipient, uint256.NewInt(5), 1)

	assert.False(t, tx.Verify(), "unsigned")

	tx.Signature = "0OIl"
	assert.False(t, tx.Verify(), "not base58")

	tx.Signature = common.EncodeBytesToBase58([]byte("short"))
	assert.False(t, tx.Verify(), "wrong length")

	require.NoError(t, tx.Sign(priv))
	tx.Sender = "not-a-key"
	assert.False(t, tx.Verify(), "sender not a key")
}

func TestValidate(t *testing.T) {
	sender, _ := newKey(t)
	recipient, _ := newKey(t)

	assert.ErrorIs(t, NewTransfer(sender, recipient, nil, 1).Validate(), ErrMalformed)
	assert.ErrorIs(t, NewTransfer("bogus", recipient, uint256.NewInt(1), 1).Validate(), ErrMalformed)
	assert.ErrorIs(t, NewTransfer(sender, "", uint256.NewInt(1), 1).Validate(), ErrMalformed)
	assert.NoError(t, NewTransfer(sender, recipient, uint256.NewInt(0), 1).Validate())
}

func TestJSONRoundTripKeepsSignatureValid(t *testing.T) {
	sender, priv := newKey(t)
	recipient, _ := newKey(t)
	amount, err := uint256.FromDecimal("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	require.NoError(t, err)

	tx := NewTransfer(sender, recipient, amount, 42)
	require.NoError(t, tx.Sign(priv))

	var decoded Transfer
	require.NoError(t, jsonx.Unmarshal(tx.Bytes(), &decoded))
	assert.Equal(t, tx.Serialize(), decoded.Serialize())
	assert.True(t, decoded.Verify())
	assert.Equal(t, tx.Hash(), decoded.Hash())
}
