package types

import (
	"github.com/holiman/uint256"
)

// Address identifies a holder. The ledger only uses it as a map key; in practice it is
// the base58 encoding of an ed25519 public key.
type Address string

func (a Address) String() string {
	return string(a)
}

type Account struct {
	Address Address      `json:"address"`
	Balance *uint256.Int `json:"balance"`
}

// Allocation assigns an initial balance to a holder at genesis.
type Allocation struct {
	Address Address
	Amount  *uint256.Int
}
