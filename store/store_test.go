package store

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/db"
	"github.com/mezonai/token/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T, storeType StoreType) (AccountStore, NonceStore) {
	t.Helper()
	cfg := &StoreConfig{Type: storeType, Directory: t.TempDir()}
	accStore, nonceStore, err := CreateStore(cfg)
	require.NoError(t, err)
	t.Cleanup(accStore.MustClose)
	return accStore, nonceStore
}

func TestAccountStore(t *testing.T) {
	for _, st := range []StoreType{MemoryStoreType, LevelDBStoreType, BoltStoreType, SQLiteStoreType} {
		t.Run(string(st), func(t *testing.T) {
			accStore, _ := newTestStores(t, st)

			acc, err := accStore.GetByAddr("alice")
			require.NoError(t, err)
			assert.Nil(t, acc)

			big := new(uint256.Int).SetAllOne()
			require.NoError(t, accStore.StoreBatch([]*types.Account{
				{Address: "alice", Balance: uint256.NewInt(1000)},
				{Address: "whale", Balance: big},
			}))

			acc, err = accStore.GetByAddr("alice")
			require.NoError(t, err)
			require.NotNil(t, acc)
			assert.Equal(t, types.Address("alice"), acc.Address)
			assert.Equal(t, uint256.NewInt(1000), acc.Balance)

			acc, err = accStore.GetByAddr("whale")
			require.NoError(t, err)
			assert.Equal(t, big, acc.Balance)

			exists, err := accStore.ExistsByAddr("alice")
			require.NoError(t, err)
			assert.True(t, exists)

			all, err := accStore.GetAll()
			require.NoError(t, err)
			assert.Len(t, all, 2)

			// zero balances are dropped
			require.NoError(t, accStore.Store(&types.Account{Address: "alice", Balance: uint256.NewInt(0)}))
			exists, err = accStore.ExistsByAddr("alice")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestGetAllIgnoresOtherPrefixes(t *testing.T) {
	accStore, nonceStore := newTestStores(t, MemoryStoreType)

	require.NoError(t, accStore.Store(&types.Account{Address: "alice", Balance: uint256.NewInt(5)}))
	require.NoError(t, nonceStore.Set("alice", 3))

	all, err := accStore.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, types.Address("alice"), all[0].Address)
}

func TestGetAllCorruptRecord(t *testing.T) {
	provider := db.NewMemoryProvider()
	accStore, err := NewGenericAccountStore(provider)
	require.NoError(t, err)

	require.NoError(t, provider.Put([]byte(PrefixAccount+"bad"), []byte(`{"address":"bad","balance":"-5"}`)))
	_, err = accStore.GetAll()
	assert.Error(t, err)
}

func TestNonceStore(t *testing.T) {
	_, nonceStore := newTestStores(t, BoltStoreType)

	n, err := nonceStore.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	require.NoError(t, nonceStore.Set("alice", 7))
	n, err = nonceStore.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
}

func TestStoreConfigValidate(t *testing.T) {
	assert.NoError(t, (&StoreConfig{Type: MemoryStoreType}).Validate())
	assert.NoError(t, (&StoreConfig{Type: BoltStoreType, Directory: "/tmp/x"}).Validate())
	assert.Error(t, (&StoreConfig{}).Validate())
	assert.Error(t, (&StoreConfig{Type: LevelDBStoreType}).Validate())
	assert.Error(t, (&StoreConfig{Type: SQLiteStoreType}).Validate())
	assert.Error(t, (&StoreConfig{Type: RedisStoreType}).Validate())
	assert.Error(t, (&StoreConfig{Type: "rocksdb", Directory: "/tmp/x"}).Validate())

	_, err := NewStoreFactory().CreateProvider(nil)
	assert.Error(t, err)
}
