package cmd

import (
	"os"

	"github.com/mezonai/token/logx"
	"github.com/spf13/cobra"
)

// Version is reported by the health endpoint, --version and crash logs
const Version = "1.0.0"

// Flags shared by every command that opens the local store
var (
	configPath    string
	storeType     string
	dataDirectory string
)

var rootCmd = &cobra.Command{
	Use:           "token",
	Short:         "Fungible token ledger node CLI",
	Long:          "Command line interface for initializing, inspecting and serving a fungible token ledger.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to node.ini (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&storeType, "store", "", "Override [store] type: memory, leveldb, bolt, sqlite or redis")
	rootCmd.PersistentFlags().StringVar(&dataDirectory, "data-dir", "", "Override [store] directory")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed: ", err)
		os.Exit(1)
	}
}
