package cmd

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Verify that stored balances add up to the total supply",
	RunE: func(cmd *cobra.Command, args []string) error {
		return auditLedger(currentNodeOptions(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func auditLedger(opts nodeOptions, out io.Writer) error {
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
		return fmt.Errorf("audit failed: %w", err)
	}

	hash := ld.StateHash()
	fmt.Fprintf(out, "OK holders=%d total_supply=%s state_hash=%s\n",
		ld.HolderCount(), ld.TotalSupply().Dec(), hex.EncodeToString(hash[:]))
	return nil
}
