package store

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/db"
	"github.com/mezonai/token/jsonx"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/types"
)

type AccountStore interface {
	Store(account *types.Account) error
	StoreBatch(accounts []*types.Account) error
	GetByAddr(addr types.Address) (*types.Account, error)
	ExistsByAddr(addr types.Address) (bool, error)
	GetAll() ([]*types.Account, error)
	MustClose()
}

// accountRecord is the persisted form; the balance is kept as a decimal string so
// any JSON reader sees the exact 256-bit value.
type accountRecord struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type GenericAccountStore struct {
	mu         sync.RWMutex
	dbProvider db.IterableProvider
	txManager  *db.DBTxManager
}

func NewGenericAccountStore(dbProvider db.IterableProvider) (*GenericAccountStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericAccountStore{
		dbProvider: dbProvider,
		txManager:  db.NewDBTxManager(dbProvider),
	}, nil
}

func (as *GenericAccountStore) Store(account *types.Account) error {
	return as.StoreBatch([]*types.Account{account})
}

// StoreBatch writes all accounts atomically. Accounts with a zero balance are removed.
func (as *GenericAccountStore) StoreBatch(accounts []*types.Account) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	err := as.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		for _, account := range accounts {
			if account.Balance == nil || account.Balance.IsZero() {
				batch.Delete(as.getDbKey(account.Address))
				continue
			}
			accountData, err := encodeAccount(account)
			if err != nil {
				return err
			}
			batch.Put(as.getDbKey(account.Address), accountData)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write batch of accounts to database: %w", err)
	}

	return nil
}

// GetByAddr returns account instance from db, return both nil if not exist
func (as *GenericAccountStore) GetByAddr(addr types.Address) (*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	data, err := as.dbProvider.Get(as.getDbKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get account %s from db: %w", addr, err)
	}

	// Account doesn't exist
	if data == nil {
		return nil, nil
	}

	return decodeAccount(data)
}

func (as *GenericAccountStore) ExistsByAddr(addr types.Address) (bool, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.dbProvider.Has(as.getDbKey(addr))
}

// GetAll loads every stored account
func (as *GenericAccountStore) GetAll() ([]*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	accounts := make([]*types.Account, 0)
	var decodeErr error
	err := as.dbProvider.IteratePrefix([]byte(PrefixAccount), func(key, value []byte) bool {
		acc, err := decodeAccount(value)
		if err != nil {
			decodeErr = fmt.Errorf("key %s: %w", key, err)
			return false
		}
		accounts = append(accounts, acc)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return accounts, nil
}

// MustClose closes the underlying provider, which is shared with the other stores
func (as *GenericAccountStore) MustClose() {
	err := as.dbProvider.Close()
	if err != nil {
		logx.Error("ACCOUNT_STORE", "Failed to close db provider:", err.Error())
	}
}

func (as *GenericAccountStore) getDbKey(addr types.Address) []byte {
	return []byte(PrefixAccount + string(addr))
}

func encodeAccount(account *types.Account) ([]byte, error) {
	data, err := jsonx.Marshal(accountRecord{
		Address: string(account.Address),
		Balance: account.Balance.Dec(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account %s: %w", account.Address, err)
	}
	return data, nil
}

func decodeAccount(data []byte) (*types.Account, error) {
	var rec accountRecord
	if err := jsonx.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	balance, err := uint256.FromDecimal(rec.Balance)
	if err != nil {
		return nil, fmt.Errorf("account %s has corrupt balance %q: %w", rec.Address, rec.Balance, err)
	}
	return &types.Account{
		Address: types.Address(rec.Address),
		Balance: balance,
	}, nil
}
