package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/common"
	"github.com/mezonai/token/db"
	"github.com/mezonai/token/events"
	"github.com/mezonai/token/ledger"
	"github.com/mezonai/token/store"
	"github.com/mezonai/token/transaction"
	"github.com/mezonai/token/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wallet struct {
	addr types.Address
	priv ed25519.PrivateKey
}

func newWallet(t *testing.T) wallet {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return wallet{addr: common.AddressFromPublicKey(pub), priv: priv}
}

func (w wallet) transfer(t *testing.T, to types.Address, amount uint64, nonce uint64) *transaction.Transfer {
	tx := transaction.NewTransfer(w.addr, to, uint256.NewInt(amount), nonce)
	require.NoError(t, tx.Sign(w.priv))
	return tx
}

type fixture struct {
	svc     *TokenService
	ledger  *ledger.Ledger
	records []*types.TransferRecord
	owner   wallet
	addr1   wallet
	addr2   wallet
}

func newFixture(t *testing.T) *fixture {
	provider := db.NewMemoryProvider()
	accStore, err := store.NewGenericAccountStore(provider)
	require.NoError(t, err)
	nonceStore, err := store.NewGenericNonceStore(provider)
	require.NoError(t, err)

	f := &fixture{owner: newWallet(t), addr1: newWallet(t), addr2: newWallet(t)}
	bus := events.NewEventBus()
	bus.Subscribe(func(ev *events.TransferApplied) {
		f.records = append(f.records, ev.Record())
	})

	l, admin, err := ledger.NewWithAdmin(accStore, bus)
	require.NoError(t, err)
	require.NoError(t, admin.SetBalance(f.owner.addr, uint256.NewInt(1_000_000)))

	f.ledger = l
	f.svc = NewTokenService(l, nonceStore, TokenInfo{Name: "My Hardhat Token", Symbol: "MHT"})
	return f
}

func TestSubmitTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.svc.SubmitTransfer(ctx, f.owner.transfer(t, f.addr1.addr, 50, 1))
	require.NoError(t, err)
	assert.Equal(t, types.NewTransferRecord(f.owner.addr, f.addr1.addr, uint256.NewInt(50)), record)

	_, err = f.svc.SubmitTransfer(ctx, f.addr1.transfer(t, f.addr2.addr, 50, 1))
	require.NoError(t, err)

	assert.Equal(t, uint256.NewInt(999_950), f.svc.BalanceOf(f.owner.addr))
	assert.True(t, f.svc.BalanceOf(f.addr1.addr).IsZero())
	assert.Equal(t, uint256.NewInt(50), f.svc.BalanceOf(f.addr2.addr))
	assert.Equal(t, uint256.NewInt(1_000_000), f.svc.TotalSupply())
	assert.Len(t, f.records, 2)

	nonce, err := f.svc.CurrentNonce(f.owner.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestSubmitTransferInsufficientBalanceBurnsNonce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx := f.addr1.transfer(t, f.owner.addr, 1, 1)
	_, err := f.svc.SubmitTransfer(ctx, tx)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, uint256.NewInt(1_000_000), f.svc.BalanceOf(f.owner.addr))
	assert.Empty(t, f.records)

	nonce, err := f.svc.CurrentNonce(f.addr1.addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	_, err = f.svc.SubmitTransfer(ctx, tx)
	assert.ErrorIs(t, err, ErrInvalidNonce, "replay of a rejected request")
}

func TestSubmitTransferNonceOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitTransfer(ctx, f.owner.transfer(t, f.addr1.addr, 1, 2))
	var nonceErr *NonceError
	require.ErrorAs(t, err, &nonceErr)
	assert.Equal(t, uint64(1), nonceErr.Expected)
	assert.Equal(t, uint64(2), nonceErr.Got)

	tx := f.owner.transfer(t, f.addr1.addr, 1, 1)
	_, err = f.svc.SubmitTransfer(ctx, tx)
	require.NoError(t, err)

	_, err = f.svc.SubmitTransfer(ctx, tx)
	assert.ErrorIs(t, err, ErrInvalidNonce)
	assert.Equal(t, uint256.NewInt(1), f.svc.BalanceOf(f.addr1.addr))
}

func TestSubmitTransferRejectsForgery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// addr1 signs a transfer claiming to come from owner
	tx := transaction.NewTransfer(f.owner.addr, f.addr1.addr, uint256.NewInt(100), 1)
	tx.Signature = common.EncodeBytesToBase58(ed25519.Sign(f.addr1.priv, tx.Serialize()))

	_, err := f.svc.SubmitTransfer(ctx, tx)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, uint256.NewInt(1_000_000), f.svc.BalanceOf(f.owner.addr))

	nonce, err := f.svc.CurrentNonce(f.owner.addr)
	require.NoError(t, err)
	assert.Zero(t, nonce, "unverified requests do not consume nonces")
}

func TestSubmitTransferMalformed(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitTransfer(context.Background(), nil)
	assert.ErrorIs(t, err, transaction.ErrMalformed)

	tx := transaction.NewTransfer(f.owner.addr, "nobody", uint256.NewInt(1), 1)
	_, err = f.svc.SubmitTransfer(context.Background(), tx)
	assert.ErrorIs(t, err, transaction.ErrMalformed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.svc.SubmitTransfer(ctx, f.owner.transfer(t, f.addr1.addr, 1, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenInfo(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, TokenInfo{Name: "My Hardhat Token", Symbol: "MHT"}, f.svc.TokenInfo())
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	hs := NewHealthService(f.ledger, "test")

	resp, err := hs.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusServing, resp.Status)
	assert.Equal(t, 1, resp.HolderCount)
	assert.Equal(t, "1000000", resp.TotalSupply)
	assert.Empty(t, resp.ErrorMessage)

	resp, err = NewHealthService(nil, "test").Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNotServing, resp.Status)
}
