package snapshot

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/jsonx"
	"github.com/mezonai/token/ledger"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/types"
	"github.com/mezonai/token/utils"
)

const (
	FileName      = "snapshot-latest.json"
	filePattern   = "snapshot-*.json"
	formatVersion = 1
)

type SnapshotMeta struct {
	Version     int    `json:"version"`
	CreatedAt   int64  `json:"created_at"`
	HolderCount int    `json:"holder_count"`
	TotalSupply string `json:"total_supply"`
	StateHash   string `json:"state_hash"`
}

type AccountEntry struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type SnapshotFile struct {
	Meta     SnapshotMeta   `json:"meta"`
	Accounts []AccountEntry `json:"accounts"`
}

// WriteSnapshot writes accounts to <dir>/snapshot-latest.json and removes older
// snapshot-*.json files in dir. Other files in dir are left alone.
func WriteSnapshot(dir string, accounts []*types.Account, totalSupply *uint256.Int) (string, error) {
	balances := make(map[types.Address]*uint256.Int, len(accounts))
	entries := make([]AccountEntry, 0, len(accounts))
	for _, acc := range accounts {
		if acc.Balance == nil || acc.Balance.IsZero() {
			continue
		}
		balances[acc.Address] = acc.Balance
		entries = append(entries, AccountEntry{Address: string(acc.Address), Balance: acc.Balance.Dec()})
	}
	stateHash := ledger.ComputeStateHash(balances)

	file := SnapshotFile{
		Meta: SnapshotMeta{
			Version:     formatVersion,
			CreatedAt:   time.Now().Unix(),
			HolderCount: len(entries),
			TotalSupply: utils.Uint256ToString(totalSupply),
			StateHash:   hex.EncodeToString(stateHash[:]),
		},
		Accounts: entries,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := jsonx.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	// write then rename so a crash never leaves a truncated latest snapshot
	latestPath := filepath.Join(dir, FileName)
	tmpPath := latestPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, latestPath); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}

	if err := cleanupOldSnapshots(dir, latestPath); err != nil {
		logx.Error("SNAPSHOT", "Failed to cleanup old snapshots: ", err)
	}
	return latestPath, nil
}

// ReadSnapshot loads a snapshot file from disk
func ReadSnapshot(path string) (*SnapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s SnapshotFile
	if err := jsonx.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Meta.Version != formatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Meta.Version)
	}
	return &s, nil
}

// Allocations converts the snapshot back into ledger allocations after checking
// that the balances add up to the recorded total supply and state hash.
func (s *SnapshotFile) Allocations() ([]types.Allocation, error) {
	allocs := make([]types.Allocation, 0, len(s.Accounts))
	balances := make(map[types.Address]*uint256.Int, len(s.Accounts))
	sum := uint256.NewInt(0)
	for _, entry := range s.Accounts {
		amount, err := utils.ParseAmount(entry.Balance)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", entry.Address, err)
		}
		addr := types.Address(entry.Address)
		if _, dup := balances[addr]; dup {
			return nil, fmt.Errorf("account %s listed twice", entry.Address)
		}
		if _, overflow := sum.AddOverflow(sum, amount); overflow {
			return nil, fmt.Errorf("%w: snapshot balances", ledger.ErrSupplyOverflow)
		}
		balances[addr] = amount
		allocs = append(allocs, types.Allocation{Address: addr, Amount: amount})
	}

	supply, err := utils.ParseAmount(s.Meta.TotalSupply)
	if err != nil {
		return nil, fmt.Errorf("total supply: %w", err)
	}
	if !sum.Eq(supply) {
		return nil, fmt.Errorf("%w: balances sum to %s, snapshot records %s", ledger.ErrSupplyMismatch, sum.Dec(), supply.Dec())
	}
	stateHash := ledger.ComputeStateHash(balances)
	if hex.EncodeToString(stateHash[:]) != s.Meta.StateHash {
		return nil, fmt.Errorf("snapshot state hash mismatch")
	}
	return allocs, nil
}

func cleanupOldSnapshots(dir, latestPath string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(filePattern, file.Name()); !ok {
			continue
		}

		filePath := filepath.Join(dir, file.Name())
		if filePath != latestPath {
			if err := os.Remove(filePath); err != nil {
				logx.Error("SNAPSHOT", "Failed to remove old snapshot: ", filePath, err)
			}
		}
	}

	return nil
}
