package cmd

import (
	"fmt"

	"github.com/mezonai/token/config"
	"github.com/mezonai/token/events"
	"github.com/mezonai/token/ledger"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/store"
)

// nodeOptions selects the node config and the store overrides given on the command line
type nodeOptions struct {
	ConfigPath string
	StoreType  string
	DataDir    string
}

func currentNodeOptions() nodeOptions {
	return nodeOptions{ConfigPath: configPath, StoreType: storeType, DataDir: dataDirectory}
}

// localNode is an opened store plus the config it was opened with
type localNode struct {
	cfg          *config.NodeConfig
	accountStore store.AccountStore
	nonceStore   store.NonceStore
}

func openLocalNode(opts nodeOptions) (*localNode, error) {
	cfg, err := config.LoadNodeConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load node config: %w", err)
	}
	if opts.StoreType != "" {
		cfg.Store.Type = store.StoreType(opts.StoreType)
	}
	if opts.DataDir != "" {
		cfg.Store.Directory = opts.DataDir
	}
	if cfg.Log.File != "" {
		logx.Configure(cfg.Log)
	}

	accStore, nonceStore, err := store.CreateStore(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Type, err)
	}
	logx.Info("NODE", fmt.Sprintf("Opened %s store at %s", cfg.Store.Type, cfg.Store.Directory))
	return &localNode{cfg: cfg, accountStore: accStore, nonceStore: nonceStore}, nil
}

func (n *localNode) openLedger(bus *events.EventBus) (*ledger.Ledger, error) {
	return ledger.New(n.accountStore, bus)
}

func (n *localNode) Close() {
	n.accountStore.MustClose()
}
