package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mezonai/token/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dir         string
	opts        nodeOptions
	genesisPath string
	owner       types.Address
	ownerKey    string
	friend      types.Address
}

func newTestEnv(t *testing.T) *testEnv {
	dir := t.TempDir()
	env := &testEnv{
		dir:      dir,
		opts:     nodeOptions{StoreType: "bolt", DataDir: filepath.Join(dir, "data")},
		ownerKey: filepath.Join(dir, "owner.key"),
	}

	var err error
	env.owner, err = generateKey(env.ownerKey, &bytes.Buffer{})
	require.NoError(t, err)
	env.friend, err = generateKey(filepath.Join(dir, "friend.key"), &bytes.Buffer{})
	require.NoError(t, err)

	env.genesisPath = filepath.Join(dir, "genesis.yml")
	genesis := fmt.Sprintf(`config:
  token:
    name: My Hardhat Token
    symbol: MHT
    decimals: 0
  alloc:
    - address: %s
      amount: "1_000_000"
`, env.owner)
	require.NoError(t, os.WriteFile(env.genesisPath, []byte(genesis), 0o600))
	return env
}

func (env *testEnv) balance(t *testing.T, holder types.Address) string {
	var out bytes.Buffer
	require.NoError(t, printBalance(context.Background(), env.opts, "", holder, &out))
	return strings.TrimSpace(out.String())
}

func TestKeygenRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	var out bytes.Buffer
	addr, err := generateKey(path, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), string(addr))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = generateKey(path, &out)
	assert.Error(t, err)
}

func TestInitTransferAudit(t *testing.T) {
	env := newTestEnv(t)

	var out bytes.Buffer
	require.NoError(t, initializeLedger(env.opts, env.genesisPath, &out))
	assert.Contains(t, out.String(), "total supply 1000000")
	assert.Equal(t, "1000000", env.balance(t, env.owner))

	err := initializeLedger(env.opts, env.genesisPath, &out)
	assert.ErrorContains(t, err, "refusing to seed again")

	out.Reset()
	cfg := TransferConfig{PrivateKeyFile: env.ownerKey, To: string(env.friend), Amount: "250_000"}
	require.NoError(t, transferToken(context.Background(), env.opts, cfg, &out))
	assert.Contains(t, out.String(), "250000")

	// second transfer picks the next nonce from the store
	require.NoError(t, transferToken(context.Background(), env.opts, cfg, &out))
	assert.Equal(t, "500000", env.balance(t, env.owner))
	assert.Equal(t, "500000", env.balance(t, env.friend))

	cfg.Amount = "500_001"
	err = transferToken(context.Background(), env.opts, cfg, &out)
	assert.ErrorContains(t, err, "not enough tokens")
	assert.Equal(t, "500000", env.balance(t, env.owner))

	out.Reset()
	require.NoError(t, auditLedger(env.opts, &out))
	assert.Contains(t, out.String(), "OK holders=2 total_supply=1000000")
}

func TestTransferValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := transferToken(ctx, env.opts, TransferConfig{PrivateKeyFile: env.ownerKey, To: string(env.friend), Amount: "-1"}, &bytes.Buffer{})
	assert.Error(t, err)

	err = transferToken(ctx, env.opts, TransferConfig{PrivateKeyFile: env.ownerKey, To: "nobody", Amount: "1"}, &bytes.Buffer{})
	assert.Error(t, err)

	err = transferToken(ctx, env.opts, TransferConfig{To: string(env.friend), Amount: "1"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, initializeLedger(env.opts, env.genesisPath, &bytes.Buffer{}))

	serveRPCAddr = "127.0.0.1:0"
	serveMetricsAddr = "127.0.0.1:0"
	defer func() {
		serveRPCAddr = ""
		serveMetricsAddr = ""
	}()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveNode(ctx, env.opts, env.genesisPath)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop")
	}

	// the store was closed and can be reopened
	assert.Equal(t, "1000000", env.balance(t, env.owner))
}

func TestServeReturnsBindErrors(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, initializeLedger(env.opts, env.genesisPath, &bytes.Buffer{}))

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	defer func() {
		serveRPCAddr = ""
		serveMetricsAddr = ""
	}()

	cases := []struct {
		name, rpcAddr, metricsAddr, wantErr string
	}{
		{"rpc", busy.Addr().String(), "127.0.0.1:0", "jsonrpc listen"},
		{"metrics", "127.0.0.1:0", busy.Addr().String(), "metrics listen"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			serveRPCAddr = tc.rpcAddr
			serveMetricsAddr = tc.metricsAddr

			done := make(chan error, 1)
			go func() {
				done <- serveNode(context.Background(), env.opts, env.genesisPath)
			}()
			select {
			case err := <-done:
				assert.ErrorContains(t, err, tc.wantErr)
			case <-time.After(15 * time.Second):
				t.Fatal("serve blocked on a busy address")
			}
		})
	}

	// the store was released on the error path
	assert.Equal(t, "1000000", env.balance(t, env.owner))
}

func TestSnapshotRestore(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, initializeLedger(env.opts, env.genesisPath, &bytes.Buffer{}))
	cfg := TransferConfig{PrivateKeyFile: env.ownerKey, To: string(env.friend), Amount: "42"}
	require.NoError(t, transferToken(context.Background(), env.opts, cfg, &bytes.Buffer{}))

	snapDir := filepath.Join(env.dir, "snapshots")
	var out bytes.Buffer
	require.NoError(t, exportSnapshot(env.opts, snapDir, &out))
	assert.Contains(t, out.String(), "2 holders")

	restored := nodeOptions{StoreType: "leveldb", DataDir: filepath.Join(env.dir, "restored")}
	out.Reset()
	require.NoError(t, restoreLedger(restored, filepath.Join(snapDir, "snapshot-latest.json"), &out))
	assert.Contains(t, out.String(), "total supply 1000000")

	var bal bytes.Buffer
	require.NoError(t, printBalance(context.Background(), restored, "", env.friend, &bal))
	assert.Equal(t, "42", strings.TrimSpace(bal.String()))
	require.NoError(t, auditLedger(restored, &bytes.Buffer{}))

	err := restoreLedger(restored, filepath.Join(snapDir, "snapshot-latest.json"), &out)
	assert.ErrorContains(t, err, "refusing to seed again")
}
