package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/events"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/monitoring"
	"github.com/mezonai/token/store"
	"github.com/mezonai/token/types"
)

// Ledger owns holder balances. Balances live in memory and are written through to
// the account store; total supply only changes through the Admin capability.
type Ledger struct {
	mu           sync.RWMutex
	balances     map[types.Address]*uint256.Int
	totalSupply  *uint256.Int
	sequence     uint64
	accountStore store.AccountStore
	eventBus     *events.EventBus
}

// New loads the ledger from accountStore. Transfer records are published on eventBus,
// which may be nil.
func New(accountStore store.AccountStore, eventBus *events.EventBus) (*Ledger, error) {
	if accountStore == nil {
		return nil, fmt.Errorf("account store cannot be nil")
	}

	accounts, err := accountStore.GetAll()
	if err != nil {
		return nil, fmt.Errorf("could not load accounts: %w", err)
	}

	l := &Ledger{
		balances:     make(map[types.Address]*uint256.Int, len(accounts)),
		totalSupply:  uint256.NewInt(0),
		accountStore: accountStore,
		eventBus:     eventBus,
	}
	for _, acc := range accounts {
		if acc.Balance.IsZero() {
			continue
		}
		if _, overflow := l.totalSupply.AddOverflow(l.totalSupply, acc.Balance); overflow {
			return nil, fmt.Errorf("%w: stored balances", ErrSupplyOverflow)
		}
		l.balances[acc.Address] = new(uint256.Int).Set(acc.Balance)
	}

	monitoring.SetTotalSupply(l.totalSupply)
	monitoring.SetHolderCount(len(l.balances))
	logx.Info("LEDGER", fmt.Sprintf("Loaded %d holders, total supply %s", len(l.balances), l.totalSupply.Dec()))
	return l, nil
}

// BalanceOf returns a copy of holder's balance, zero if the holder was never credited.
func (l *Ledger) BalanceOf(holder types.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return new(uint256.Int).Set(l.balanceWithoutLocking(holder))
}

// TotalSupply returns the sum every balance must add up to.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return new(uint256.Int).Set(l.totalSupply)
}

// HolderCount returns the number of holders with a non-zero balance.
func (l *Ledger) HolderCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.balances)
}

// Accounts returns a snapshot of all non-zero balances ordered by address.
func (l *Ledger) Accounts() []*types.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	accounts := make([]*types.Account, 0, len(l.balances))
	for addr, bal := range l.balances {
		accounts = append(accounts, &types.Account{Address: addr, Balance: new(uint256.Int).Set(bal)})
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Address < accounts[j].Address
	})
	return accounts
}

// Transfer moves amount from caller to recipient. caller must be the authenticated
// identity on whose behalf the call is made.
//
// The check, both balance updates, the store write and the notification happen under
// one write lock, so subscribers must not call back into the ledger. On any error
// nothing has changed and nothing was published.
// A zero amount and caller == recipient are valid and still produce a record.
func (l *Ledger) Transfer(caller, recipient types.Address, amount *uint256.Int) (*types.TransferRecord, error) {
	if amount == nil {
		panic("ledger: nil transfer amount")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	senderBalance := l.balanceWithoutLocking(caller)
	if senderBalance.Lt(amount) {
		monitoring.RecordRejectedTransfer(monitoring.TransferInsufficientBalance)
		logx.Warn("LEDGER", fmt.Sprintf("Rejected transfer %s -> %s of %s: balance %s", caller, recipient, amount.Dec(), senderBalance.Dec()))
		return nil, &InsufficientBalanceError{
			Holder:  caller,
			Balance: new(uint256.Int).Set(senderBalance),
			Amount:  new(uint256.Int).Set(amount),
		}
	}

	if caller != recipient && !amount.IsZero() {
		if err := l.moveWithoutLocking(caller, recipient, senderBalance, amount); err != nil {
			monitoring.RecordRejectedTransfer(monitoring.TransferStorageFailure)
			logx.Error("LEDGER", fmt.Sprintf("Transfer %s -> %s of %s not persisted: %v", caller, recipient, amount.Dec(), err))
			return nil, err
		}
	}

	l.sequence++
	if l.eventBus != nil {
		l.eventBus.Publish(events.NewTransferApplied(types.NewTransferRecord(caller, recipient, amount), l.sequence))
	}
	logx.Debug("LEDGER", fmt.Sprintf("Applied transfer #%d %s -> %s: %s", l.sequence, caller, recipient, amount.Dec()))

	return types.NewTransferRecord(caller, recipient, amount), nil
}

// moveWithoutLocking computes both new balances, persists them in one batch and only
// then updates memory. Callers hold the write lock.
func (l *Ledger) moveWithoutLocking(sender, recipient types.Address, senderBalance, amount *uint256.Int) error {
	newSender, underflow := new(uint256.Int).SubOverflow(senderBalance, amount)
	if underflow {
		panic(fmt.Sprintf("ledger: debit underflow for %s (balance %s, amount %s)", sender, senderBalance.Dec(), amount.Dec()))
	}
	newRecipient, overflow := new(uint256.Int).AddOverflow(l.balanceWithoutLocking(recipient), amount)
	if overflow {
		panic(fmt.Sprintf("ledger: credit overflow for %s, conservation already broken", recipient))
	}

	err := l.accountStore.StoreBatch([]*types.Account{
		{Address: sender, Balance: newSender},
		{Address: recipient, Balance: newRecipient},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	l.setBalanceWithoutLocking(sender, newSender)
	l.setBalanceWithoutLocking(recipient, newRecipient)
	return nil
}

// Audit recomputes the sum of all balances and compares it with the total supply,
// then checks that the account store holds exactly the in-memory balances.
func (l *Ledger) Audit() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sum := uint256.NewInt(0)
	for addr, bal := range l.balances {
		if _, overflow := sum.AddOverflow(sum, bal); overflow {
			return fmt.Errorf("%w: sum overflows at %s", ErrSupplyMismatch, addr)
		}
	}
	if !sum.Eq(l.totalSupply) {
		return fmt.Errorf("%w: balances sum to %s, total supply is %s", ErrSupplyMismatch, sum.Dec(), l.totalSupply.Dec())
	}

	stored, err := l.accountStore.GetAll()
	if err != nil {
		return fmt.Errorf("could not load accounts: %w", err)
	}
	persisted := make(map[types.Address]*uint256.Int, len(stored))
	for _, acc := range stored {
		persisted[acc.Address] = acc.Balance
	}
	if ComputeStateHash(persisted) != ComputeStateHash(l.balances) {
		return fmt.Errorf("%w: account store diverges from memory", ErrSupplyMismatch)
	}
	return nil
}

// StateHash digests the current balances, see ComputeStateHash.
func (l *Ledger) StateHash() [32]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return ComputeStateHash(l.balances)
}

func (l *Ledger) balanceWithoutLocking(holder types.Address) *uint256.Int {
	if bal, ok := l.balances[holder]; ok {
		return bal
	}
	return uint256.NewInt(0)
}

func (l *Ledger) setBalanceWithoutLocking(holder types.Address, balance *uint256.Int) {
	if balance.IsZero() {
		delete(l.balances, holder)
	} else {
		l.balances[holder] = balance
	}
	monitoring.SetHolderCount(len(l.balances))
}
