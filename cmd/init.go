package cmd

import (
	"fmt"
	"io"

	"github.com/mezonai/token/config"
	"github.com/mezonai/token/ledger"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/snapshot"
	"github.com/mezonai/token/types"
	"github.com/mezonai/token/utils"
	"github.com/spf13/cobra"
)

var (
	initGenesisPath  string
	initSnapshotPath string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed an empty store from a genesis file",
	Long: `Initialize the ledger by:
- Reading token metadata and allocations from the genesis file
- Opening the configured store, which must be empty
- Crediting every allocation in one batch

With --snapshot the balances come from a snapshot file instead of the genesis
allocations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if initSnapshotPath != "" {
			return restoreLedger(currentNodeOptions(), initSnapshotPath, cmd.OutOrStdout())
		}
		return initializeLedger(currentNodeOptions(), initGenesisPath, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initGenesisPath, "genesis", "config/genesis.yml", "Path to genesis configuration file")
	initCmd.Flags().StringVar(&initSnapshotPath, "snapshot", "", "Seed from a snapshot file instead of the genesis allocations")
}

func initializeLedger(opts nodeOptions, genesisPath string, out io.Writer) error {
	genesis, err := config.LoadGenesisConfig(genesisPath)
	if err != nil {
		return err
	}
	allocs, total, err := genesis.Allocations()
	if err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}

	if err := seedEmptyStore(opts, allocs); err != nil {
		return err
	}

	logx.Info("INIT", fmt.Sprintf("Seeded %d holders from %s", len(allocs), genesisPath))
	fmt.Fprintf(out, "Initialized %s (%s): %d holders, total supply %s\n",
		genesis.Token.Name, genesis.Token.Symbol, len(allocs), utils.FormatAmount(total, genesis.Token.Decimals))
	return nil
}

func restoreLedger(opts nodeOptions, snapshotPath string, out io.Writer) error {
	snap, err := snapshot.ReadSnapshot(snapshotPath)
	if err != nil {
		return err
	}
	allocs, err := snap.Allocations()
	if err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	if err := seedEmptyStore(opts, allocs); err != nil {
		return err
	}

	logx.Info("INIT", fmt.Sprintf("Restored %d holders from %s", len(allocs), snapshotPath))
	fmt.Fprintf(out, "Restored %d holders, total supply %s\n", len(allocs), snap.Meta.TotalSupply)
	return nil
}

// seedEmptyStore credits allocs through the Admin capability. Seeding a store that
// already holds balances is refused.
func seedEmptyStore(opts nodeOptions, allocs []types.Allocation) error {
	node, err := openLocalNode(opts)
	if err != nil {
		return err
	}
	defer node.Close()

	existing, err := node.accountStore.GetAll()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("store already holds %d accounts, refusing to seed again", len(existing))
	}

	_, admin, err := ledger.NewWithAdmin(node.accountStore, nil)
	if err != nil {
		return err
	}
	if err := admin.Allocate(allocs); err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}
	return nil
}
