package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/types"
)

// ComputeStateHash computes a deterministic hash over a set of balances.
// Each record is encoded as: len(address)(8B BE)|address|balance(32B BE)
// Holders are sorted by address. Zero balances are skipped so a sparse and a
// dense copy of the same state hash equally.
func ComputeStateHash(balances map[types.Address]*uint256.Int) [32]byte {
	h := sha256.New()

	addresses := make([]string, 0, len(balances))
	for addr, bal := range balances {
		if bal == nil || bal.IsZero() {
			continue
		}
		addresses = append(addresses, string(addr))
	}
	if len(addresses) == 0 {
		return [32]byte{}
	}
	sort.Strings(addresses)

	buf := make([]byte, 8)
	for _, addr := range addresses {
		bal := balances[types.Address(addr)].Bytes32()
		binary.BigEndian.PutUint64(buf, uint64(len(addr)))
		h.Write(buf)
		h.Write([]byte(addr))
		h.Write(bal[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
