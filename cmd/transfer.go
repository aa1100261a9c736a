package cmd

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"
	"os"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/client"
	"github.com/mezonai/token/common"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/service"
	"github.com/mezonai/token/transaction"
	"github.com/mezonai/token/types"
	"github.com/mezonai/token/utils"
	"github.com/spf13/cobra"
)

type TransferConfig struct {
	PrivateKey     string
	PrivateKeyFile string
	NodeURL        string
	To             string
	Amount         string
	Verbose        bool
}

var transferConfig TransferConfig

// transferCmd represents the transfer command
var transferCmd = &cobra.Command{
	Use:   "transfer [flags]",
	Short: "Transfer tokens to another holder",
	Long: `This command signs a transfer from the key's holder to the specified recipient.
The private key can be provided either directly via --private-key flag
or via a file using --private-key-file flag. With --node-url the transfer is
sent to a running node, otherwise it is applied to the local store.

Examples:
  # Transfer 1000 tokens through a running node
  transfer -t 5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY -a 1_000 -f /path/to/key.txt -u http://localhost:8545

  # Transfer 500 tokens on the local store
  transfer -t 5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY -a 500 -p "your-private-key-here"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return transferToken(cmd.Context(), currentNodeOptions(), transferConfig, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.PersistentFlags().StringVarP(&transferConfig.PrivateKeyFile, "private-key-file", "f", "", "sender private key file")
	transferCmd.PersistentFlags().StringVarP(&transferConfig.PrivateKey, "private-key", "p", "", "sender private key in hex")
	transferCmd.PersistentFlags().StringVarP(&transferConfig.NodeURL, "node-url", "u", "", "JSON-RPC URL of a running node")
	transferCmd.PersistentFlags().StringVarP(&transferConfig.To, "to", "t", "", "address of recipient")
	transferCmd.PersistentFlags().StringVarP(&transferConfig.Amount, "amount", "a", "", "amount")
	transferCmd.PersistentFlags().BoolVarP(&transferConfig.Verbose, "verbose", "v", false, "verbose output")
}

func transferToken(ctx context.Context, opts nodeOptions, transferConfig TransferConfig, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	amount, err := utils.ParseAmount(transferConfig.Amount)
	if err != nil {
		return fmt.Errorf("could not parse amount string: %w", err)
	}
	recipient := types.Address(transferConfig.To)
	if !common.IsValidAddress(recipient) {
		return fmt.Errorf("invalid recipient address %q", transferConfig.To)
	}

	// Load sender private key
	if transferConfig.Verbose {
		logx.Debug("TRANSFER CLI", "Loading sender private key...")
	}
	privKeyStr, err := loadSenderPrivateKey(transferConfig)
	if err != nil {
		return fmt.Errorf("failed to load sender private key: %w", err)
	}
	sender, senderPrivateKey, err := common.ParsePrivateKey(privKeyStr)
	if err != nil {
		return fmt.Errorf("failed to parse private key: %w", err)
	}

	var record *types.TransferRecord
	if transferConfig.NodeURL != "" {
		record, err = transferRemote(ctx, transferConfig, sender, senderPrivateKey, recipient, amount)
	} else {
		record, err = transferLocal(ctx, opts, sender, senderPrivateKey, recipient, amount)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Transferred %s\n", record)
	return nil
}

func transferRemote(ctx context.Context, transferConfig TransferConfig, sender types.Address, priv ed25519.PrivateKey, recipient types.Address, amount *uint256.Int) (*types.TransferRecord, error) {
	c, err := client.NewClient(client.Config{Endpoint: transferConfig.NodeURL})
	if err != nil {
		return nil, err
	}
	defer c.Close()

	nonce, err := c.CurrentNonce(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender nonce: %w", err)
	}
	tx := transaction.NewTransfer(sender, recipient, amount, nonce+1)
	if err := tx.Sign(priv); err != nil {
		return nil, err
	}
	if transferConfig.Verbose {
		logx.Debug("TRANSFER CLI", fmt.Sprintf("Sending transfer to %s: %s", transferConfig.NodeURL, tx.Serialize()))
	}

	res, err := c.Transfer(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to send transfer: %w", err)
	}
	if transferConfig.Verbose {
		logx.Debug("TRANSFER CLI", "Transfer accepted: ", res.TxHash)
	}
	return types.NewTransferRecord(sender, recipient, amount), nil
}

func transferLocal(ctx context.Context, opts nodeOptions, sender types.Address, priv ed25519.PrivateKey, recipient types.Address, amount *uint256.Int) (*types.TransferRecord, error) {
	node, err := openLocalNode(opts)
	if err != nil {
		return nil, err
	}
	defer node.Close()

	ld, err := node.openLedger(nil)
	if err != nil {
		return nil, err
	}
	svc := service.NewTokenService(ld, node.nonceStore, service.TokenInfo{})

	nonce, err := svc.CurrentNonce(sender)
	if err != nil {
		return nil, err
	}
	tx := transaction.NewTransfer(sender, recipient, amount, nonce+1)
	if err := tx.Sign(priv); err != nil {
		return nil, err
	}
	return svc.SubmitTransfer(ctx, tx)
}

// loadSenderPrivateKey loads the key from config, which is set by command flags
// the private key is originally in hex format
func loadSenderPrivateKey(transferConfig TransferConfig) (string, error) {
	if transferConfig.PrivateKey != "" {
		return transferConfig.PrivateKey, nil
	}
	if transferConfig.PrivateKeyFile == "" {
		return "", fmt.Errorf("one of --private-key or --private-key-file is required")
	}
	bytes, err := os.ReadFile(transferConfig.PrivateKeyFile)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
