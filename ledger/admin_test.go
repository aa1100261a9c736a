package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminSetBalanceMovesSupply(t *testing.T) {
	l, admin, err := NewWithAdmin(newMemoryAccountStore(t), nil)
	require.NoError(t, err)

	require.NoError(t, admin.SetBalance(holderA, uint256.NewInt(1000)))
	require.NoError(t, admin.SetBalance(holderB, uint256.NewInt(50)))
	assert.Equal(t, uint256.NewInt(1050), l.TotalSupply())

	require.NoError(t, admin.SetBalance(holderA, uint256.NewInt(10)))
	assert.Equal(t, uint256.NewInt(60), l.TotalSupply())
	assert.Equal(t, uint256.NewInt(10), l.BalanceOf(holderA))

	require.NoError(t, admin.SetBalance(holderB, uint256.NewInt(0)))
	assert.Equal(t, 1, l.HolderCount())
	assert.Equal(t, uint256.NewInt(10), l.TotalSupply())
	require.NoError(t, l.Audit())

	assert.Error(t, admin.SetBalance(holderA, nil))
}

func TestAdminSetBalanceOverflow(t *testing.T) {
	l, admin, err := NewWithAdmin(newMemoryAccountStore(t), nil)
	require.NoError(t, err)

	require.NoError(t, admin.SetBalance(holderA, new(uint256.Int).SetAllOne()))
	err = admin.SetBalance(holderB, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrSupplyOverflow)
	assert.True(t, l.BalanceOf(holderB).IsZero())
	require.NoError(t, l.Audit())
}

func TestAdminAllocate(t *testing.T) {
	l, admin, err := NewWithAdmin(newMemoryAccountStore(t), nil)
	require.NoError(t, err)

	err = admin.Allocate([]types.Allocation{
		{Address: "deployer", Amount: uint256.NewInt(600)},
		{Address: "beneficiary", Amount: uint256.NewInt(400)},
	})
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1000), l.TotalSupply())
	assert.Equal(t, uint256.NewInt(400), l.BalanceOf("beneficiary"))
	require.NoError(t, l.Audit())
}

func TestAdminAllocateAllOrNothing(t *testing.T) {
	l, admin, err := NewWithAdmin(newMemoryAccountStore(t), nil)
	require.NoError(t, err)
	require.NoError(t, admin.SetBalance(holderA, uint256.NewInt(5)))

	cases := map[string][]types.Allocation{
		"duplicate": {
			{Address: "x", Amount: uint256.NewInt(1)},
			{Address: "x", Amount: uint256.NewInt(2)},
		},
		"existing holder": {
			{Address: "y", Amount: uint256.NewInt(1)},
			{Address: holderA, Amount: uint256.NewInt(2)},
		},
		"overflow": {
			{Address: "y", Amount: new(uint256.Int).SetAllOne()},
		},
		"missing amount": {
			{Address: "y"},
		},
	}
	for name, allocs := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, admin.Allocate(allocs))
			assert.Equal(t, uint256.NewInt(5), l.TotalSupply())
			assert.Equal(t, 1, l.HolderCount())
		})
	}
}

func TestNewRejectsOverflowingStore(t *testing.T) {
	accStore := newMemoryAccountStore(t)
	require.NoError(t, accStore.StoreBatch([]*types.Account{
		{Address: "a", Balance: new(uint256.Int).SetAllOne()},
		{Address: "b", Balance: uint256.NewInt(1)},
	}))

	_, err := New(accStore, nil)
	assert.ErrorIs(t, err, ErrSupplyOverflow)
}
