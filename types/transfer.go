package types

import (
	"fmt"

	"github.com/holiman/uint256"
)

// TransferRecord is emitted once for every transfer the ledger applies.
type TransferRecord struct {
	Sender    Address      `json:"sender"`
	Recipient Address      `json:"recipient"`
	Amount    *uint256.Int `json:"amount"`
}

func NewTransferRecord(sender, recipient Address, amount *uint256.Int) *TransferRecord {
	return &TransferRecord{
		Sender:    sender,
		Recipient: recipient,
		Amount:    new(uint256.Int).Set(amount),
	}
}

func (r *TransferRecord) String() string {
	return fmt.Sprintf("%s -> %s: %s", r.Sender, r.Recipient, r.Amount.Dec())
}
