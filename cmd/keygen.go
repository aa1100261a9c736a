package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/mezonai/token/common"
	"github.com/mezonai/token/types"
	"github.com/spf13/cobra"
)

var keygenOutput string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an ed25519 key and print its address",
	Long: `Generates a new Ed25519 key. The hex encoded seed is written to --out
(mode 0600) and the base58 address is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := generateKey(keygenOutput, cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenOutput, "out", "o", "privkey.txt", "File to write the private key seed to")
}

func generateKey(path string, out io.Writer) (types.Address, error) {
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(priv.Seed())), 0o600); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}

	addr := common.AddressFromPublicKey(pub)
	fmt.Fprintf(out, "Address: %s\nPrivate key written to %s\n", addr, path)
	return addr, nil
}
