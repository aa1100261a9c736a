package ledger

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/types"
)

var (
	ErrInsufficientBalance = errors.New("not enough tokens")
	ErrHolderExists        = errors.New("holder already has a balance")
	ErrSupplyMismatch      = errors.New("total supply mismatch")
	ErrSupplyOverflow      = errors.New("total supply exceeds 256 bits")
	ErrPersist             = errors.New("failed to persist ledger state")
)

// InsufficientBalanceError reports a rejected transfer. It matches
// ErrInsufficientBalance with errors.Is.
type InsufficientBalanceError struct {
	Holder  types.Address
	Balance *uint256.Int
	Amount  *uint256.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: %s holds %s, transfer needs %s", ErrInsufficientBalance, e.Holder, e.Balance.Dec(), e.Amount.Dec())
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
