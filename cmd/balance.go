package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/mezonai/token/client"
	"github.com/mezonai/token/types"
	"github.com/spf13/cobra"
)

var balanceNodeURL string

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Print the balance of a holder",
	Long: `Prints the balance of a holder. Without --node-url the local store is read
directly, which requires the node to be stopped for file based stores.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printBalance(cmd.Context(), currentNodeOptions(), balanceNodeURL, types.Address(args[0]), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&balanceNodeURL, "node-url", "u", "", "JSON-RPC URL of a running node")
}

func printBalance(ctx context.Context, opts nodeOptions, nodeURL string, holder types.Address, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if nodeURL != "" {
		c, err := client.NewClient(client.Config{Endpoint: nodeURL})
		if err != nil {
			return err
		}
		defer c.Close()

		bal, err := c.BalanceOf(ctx, holder)
		if err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		fmt.Fprintln(out, bal.Balance)
		return nil
	}

	node, err := openLocalNode(opts)
	if err != nil {
		return err
	}
	defer node.Close()

	ld, err := node.openLedger(nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, ld.BalanceOf(holder).Dec())
	return nil
}
