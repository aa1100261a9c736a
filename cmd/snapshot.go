package cmd

import (
	"fmt"
	"io"

	"github.com/mezonai/token/snapshot"
	"github.com/spf13/cobra"
)

var snapshotDir string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export all balances to a snapshot file",
	Long: `Audits the local store and writes every balance, the total supply and the
state hash to <dir>/snapshot-latest.json. A snapshot can seed a new store with
init --snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportSnapshot(currentNodeOptions(), snapshotDir, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVar(&snapshotDir, "dir", "./snapshots", "Directory to write the snapshot to")
}

func exportSnapshot(opts nodeOptions, dir string, out io.Writer) error {
	node, err := openLocalNode(opts)
	if err != nil {
		return err
	}
	defer node.Close()

	ld, err := node.openLedger(nil)
	if err != nil {
		return err
	}
	if err := ld.Audit(); err != nil {
		return fmt.Errorf("refusing to snapshot an inconsistent ledger: %w", err)
	}

	path, err := snapshot.WriteSnapshot(dir, ld.Accounts(), ld.TotalSupply())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Snapshot of %d holders written to %s\n", ld.HolderCount(), path)
	return nil
}
