package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/events"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/monitoring"
	"github.com/mezonai/token/store"
	"github.com/mezonai/token/types"
)

// Admin writes balances directly, bypassing the transfer checks. It is only handed
// out by NewWithAdmin, so code holding just a *Ledger cannot seed. Genesis setup and
// test fixtures are its only intended users.
type Admin struct {
	ledger *Ledger
}

// NewWithAdmin is New plus the seeding capability for the returned ledger.
func NewWithAdmin(accountStore store.AccountStore, eventBus *events.EventBus) (*Ledger, *Admin, error) {
	l, err := New(accountStore, eventBus)
	if err != nil {
		return nil, nil, err
	}
	return l, &Admin{ledger: l}, nil
}

// SetBalance overwrites holder's balance and moves the total supply by the difference.
// No transfer record is emitted.
func (a *Admin) SetBalance(holder types.Address, balance *uint256.Int) error {
	if balance == nil {
		return fmt.Errorf("balance cannot be nil")
	}

	l := a.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.balanceWithoutLocking(holder)
	supply, underflow := new(uint256.Int).SubOverflow(l.totalSupply, current)
	if underflow {
		panic(fmt.Sprintf("ledger: balance of %s exceeds total supply", holder))
	}
	if _, overflow := supply.AddOverflow(supply, balance); overflow {
		return fmt.Errorf("%w: setting %s to %s", ErrSupplyOverflow, holder, balance.Dec())
	}

	next := new(uint256.Int).Set(balance)
	if err := l.accountStore.Store(&types.Account{Address: holder, Balance: next}); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	l.setBalanceWithoutLocking(holder, next)
	l.totalSupply = supply

	monitoring.SetTotalSupply(l.totalSupply)
	logx.Warn("LEDGER ADMIN", fmt.Sprintf("Balance of %s set to %s, total supply %s", holder, balance.Dec(), supply.Dec()))
	return nil
}

// Allocate credits a genesis distribution. It is all-or-nothing: duplicate holders,
// holders that already have a balance, or a supply overflow reject the whole set.
func (a *Admin) Allocate(allocs []types.Allocation) error {
	l := a.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	supply := new(uint256.Int).Set(l.totalSupply)
	seen := make(map[types.Address]struct{}, len(allocs))
	accounts := make([]*types.Account, 0, len(allocs))
	for _, alloc := range allocs {
		if alloc.Amount == nil {
			return fmt.Errorf("allocation for %s has no amount", alloc.Address)
		}
		if _, dup := seen[alloc.Address]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrHolderExists, alloc.Address)
		}
		seen[alloc.Address] = struct{}{}
		if _, ok := l.balances[alloc.Address]; ok {
			return fmt.Errorf("%w: %s", ErrHolderExists, alloc.Address)
		}
		if _, overflow := supply.AddOverflow(supply, alloc.Amount); overflow {
			return fmt.Errorf("%w: at %s", ErrSupplyOverflow, alloc.Address)
		}
		accounts = append(accounts, &types.Account{Address: alloc.Address, Balance: new(uint256.Int).Set(alloc.Amount)})
	}

	if err := l.accountStore.StoreBatch(accounts); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	for _, acc := range accounts {
		l.setBalanceWithoutLocking(acc.Address, acc.Balance)
	}
	l.totalSupply = supply

	monitoring.SetTotalSupply(l.totalSupply)
	logx.Info("LEDGER ADMIN", fmt.Sprintf("Allocated %d holders, total supply %s", len(accounts), supply.Dec()))
	return nil
}
