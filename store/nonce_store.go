package store

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/mezonai/token/db"
	"github.com/mezonai/token/types"
)

// NonceStore keeps the last accepted signed-transfer nonce per holder.
type NonceStore interface {
	Get(addr types.Address) (uint64, error)
	Set(addr types.Address, nonce uint64) error
}

type GenericNonceStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericNonceStore(dbProvider db.DatabaseProvider) (*GenericNonceStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &GenericNonceStore{dbProvider: dbProvider}, nil
}

// Get returns 0 for holders that never submitted a transfer
func (ns *GenericNonceStore) Get(addr types.Address) (uint64, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	data, err := ns.dbProvider.Get(ns.getDbKey(addr))
	if err != nil {
		return 0, fmt.Errorf("could not get nonce of %s: %w", addr, err)
	}
	if data == nil {
		return 0, nil
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt nonce for %s: %d bytes", addr, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func (ns *GenericNonceStore) Set(addr types.Address, nonce uint64) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, nonce)
	if err := ns.dbProvider.Put(ns.getDbKey(addr), buf); err != nil {
		return fmt.Errorf("failed to write nonce of %s: %w", addr, err)
	}
	return nil
}

func (ns *GenericNonceStore) getDbKey(addr types.Address) []byte {
	return []byte(PrefixNonce + string(addr))
}
