package transaction

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/common"
	"github.com/mezonai/token/jsonx"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/types"
	"github.com/mezonai/token/utils"
	"github.com/mr-tron/base58"
)

// Limits to prevent DoS via oversized inputs
const (
	maxSignatureBase58Len = 128
	maxAddressLen         = 64
)

var ErrMalformed = errors.New("malformed transfer")

// Transfer is a signed request by Sender to move Amount to Recipient. Sender is the
// base58 ed25519 public key that produced Signature; Nonce orders a sender's requests.
type Transfer struct {
	Sender    types.Address `json:"sender"`
	Recipient types.Address `json:"recipient"`
	Amount    *uint256.Int  `json:"amount"`
	Nonce     uint64        `json:"nonce"`
	Signature string        `json:"signature,omitempty"`
}

func NewTransfer(sender, recipient types.Address, amount *uint256.Int, nonce uint64) *Transfer {
	return &Transfer{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Nonce:     nonce,
	}
}

// Serialize returns the signed bytes: sender|recipient|amount|nonce.
func (tx *Transfer) Serialize() []byte {
	return []byte(fmt.Sprintf("%s|%s|%s|%d", tx.Sender, tx.Recipient, utils.Uint256ToString(tx.Amount), tx.Nonce))
}

// Validate checks the fields that do not need the signature.
func (tx *Transfer) Validate() error {
	if tx.Amount == nil {
		return fmt.Errorf("%w: missing amount", ErrMalformed)
	}
	if len(tx.Sender) > maxAddressLen || !common.IsValidAddress(tx.Sender) {
		return fmt.Errorf("%w: invalid sender %q", ErrMalformed, tx.Sender)
	}
	if len(tx.Recipient) > maxAddressLen || !common.IsValidAddress(tx.Recipient) {
		return fmt.Errorf("%w: invalid recipient %q", ErrMalformed, tx.Recipient)
	}
	return nil
}

// Sign fills Signature. priv must belong to Sender.
func (tx *Transfer) Sign(priv ed25519.PrivateKey) error {
	pub := priv.Public().(ed25519.PublicKey)
	if common.AddressFromPublicKey(pub) != tx.Sender {
		return fmt.Errorf("private key does not match sender %s", tx.Sender)
	}
	tx.Signature = common.EncodeBytesToBase58(ed25519.Sign(priv, tx.Serialize()))
	return nil
}

func (tx *Transfer) Verify() bool {
	if tx.Signature == "" {
		logx.Error("TransferVerify", "missing signature")
		return false
	}
	if len(tx.Signature) > maxSignatureBase58Len {
		logx.Error("TransferVerify", "signature too large")
		return false
	}

	signature, err := common.DecodeBase58ToBytes(tx.Signature)
	if err != nil {
		logx.Error("TransferVerify", "failed to decode signature", err)
		return false
	}
	if len(signature) != ed25519.SignatureSize {
		logx.Error("TransferVerify", "bad signature length")
		return false
	}

	pub, err := common.PublicKeyFromAddress(tx.Sender)
	if err != nil {
		logx.Error("TransferVerify", "failed to decode sender", err)
		return false
	}
	return ed25519.Verify(pub, tx.Serialize(), signature)
}

func (tx *Transfer) Bytes() []byte {
	b, _ := jsonx.Marshal(tx)
	return b
}

// Hash identifies a signed transfer; it changes with the signature.
func (tx *Transfer) Hash() string {
	sum256 := sha256.Sum256(tx.Bytes())
	return base58.Encode(sum256[:])
}
