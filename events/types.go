package events

import (
	"time"

	"github.com/mezonai/token/types"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventTransferApplied EventType = "TransferApplied"
)

// TransferApplied is published once per successful transfer. Sequence starts at 1 and
// increases by one per applied transfer of the publishing ledger.
type TransferApplied struct {
	record    *types.TransferRecord
	sequence  uint64
	timestamp time.Time
}

func NewTransferApplied(record *types.TransferRecord, sequence uint64) *TransferApplied {
	return &TransferApplied{
		record:    record,
		sequence:  sequence,
		timestamp: time.Now(),
	}
}

func (e *TransferApplied) Type() EventType {
	return EventTransferApplied
}

func (e *TransferApplied) Timestamp() time.Time {
	return e.timestamp
}

func (e *TransferApplied) Sequence() uint64 {
	return e.sequence
}

// Record returns the applied transfer. Subscribers must treat it as read-only.
func (e *TransferApplied) Record() *types.TransferRecord {
	return e.record
}
