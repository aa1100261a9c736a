package ledger

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/mezonai/token/events"
	"github.com/mezonai/token/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transferOp struct {
	From   uint8
	To     uint8
	Amount uint16
}

var propertyHolders = []types.Address{"p0", "p1", "p2", "p3", "p4", "p5"}

// TestRandomTransferSequences replays random transfer sequences against the ledger and a
// plain map model, checking conservation, non-negativity, rejection atomicity and
// notification fidelity after every step.
func TestRandomTransferSequences(t *testing.T) {
	f := fuzz.NewWithSeed(20221018).NilChance(0).NumElements(50, 200)

	for round := 0; round < 25; round++ {
		var seed [6]uint16
		var ops []transferOp
		f.Fuzz(&seed)
		f.Fuzz(&ops)

		bus := events.NewEventBus()
		rec := &recorder{}
		bus.Subscribe(rec.handle)
		l, admin, err := NewWithAdmin(newMemoryAccountStore(t), bus)
		require.NoError(t, err)

		model := make(map[types.Address]uint64)
		supply := uint64(0)
		for i, h := range propertyHolders {
			require.NoError(t, admin.SetBalance(h, uint256.NewInt(uint64(seed[i]))))
			model[h] = uint64(seed[i])
			supply += uint64(seed[i])
		}

		var expected []*types.TransferRecord
		for _, op := range ops {
			from := propertyHolders[int(op.From)%len(propertyHolders)]
			to := propertyHolders[int(op.To)%len(propertyHolders)]
			amount := uint64(op.Amount)

			res, err := l.Transfer(from, to, uint256.NewInt(amount))
			if model[from] < amount {
				require.ErrorIs(t, err, ErrInsufficientBalance)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				model[from] -= amount
				model[to] += amount
				expected = append(expected, record(from, to, amount))
			}

			for _, h := range propertyHolders {
				require.Equal(t, uint256.NewInt(model[h]), l.BalanceOf(h), "holder %s", h)
			}
		}

		sum := uint256.NewInt(0)
		for _, h := range propertyHolders {
			sum.Add(sum, l.BalanceOf(h))
		}
		assert.Equal(t, uint256.NewInt(supply), sum)
		assert.Equal(t, uint256.NewInt(supply), l.TotalSupply())
		require.NoError(t, l.Audit())

		if len(expected) == 0 {
			assert.Empty(t, rec.records())
		} else {
			assert.Equal(t, expected, rec.records())
		}
	}
}
