package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/store"
	"github.com/mezonai/token/types"
	"github.com/mezonai/token/utils"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStoreDirectory = "./data"
	DefaultRPCAddr        = ":8545"
	DefaultMetricsAddr    = ":9100"
	DefaultCORSOrigins    = "*"

	DefaultIPMaxRequests     = 100
	DefaultWalletMaxRequests = 10
	DefaultRateLimitWindow   = time.Second
)

// LoadGenesisConfig reads and parses the genesis.yml file
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	logx.Info("CONFIG", "LoadGenesisConfig called with path: "+path)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open genesis file: %w", err)
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("failed to decode genesis file: %w", err)
	}
	cfg := &cfgFile.Config
	logx.Info("CONFIG", fmt.Sprintf("Loaded genesis: token=%s (%s), %d allocations", cfg.Token.Name, cfg.Token.Symbol, len(cfg.Alloc)))
	return cfg, nil
}

// Allocations validates the allocation list and converts it to ledger allocations.
// Addresses must be non-empty and unique, amounts must parse, and their sum must fit
// in 256 bits.
func (g *GenesisConfig) Allocations() ([]types.Allocation, *uint256.Int, error) {
	allocs := make([]types.Allocation, 0, len(g.Alloc))
	seen := make(map[string]struct{}, len(g.Alloc))
	total := uint256.NewInt(0)
	for i, a := range g.Alloc {
		addr := strings.TrimSpace(a.Address)
		if addr == "" {
			return nil, nil, fmt.Errorf("alloc[%d]: empty address", i)
		}
		if _, dup := seen[addr]; dup {
			return nil, nil, fmt.Errorf("alloc[%d]: duplicate address %s", i, addr)
		}
		seen[addr] = struct{}{}

		amount, err := utils.ParseAmount(a.Amount)
		if err != nil {
			return nil, nil, fmt.Errorf("alloc[%d] %s: %w", i, addr, err)
		}
		if _, overflow := total.AddOverflow(total, amount); overflow {
			return nil, nil, fmt.Errorf("alloc[%d] %s: total supply exceeds 256 bits", i, addr)
		}
		allocs = append(allocs, types.Allocation{Address: types.Address(addr), Amount: amount})
	}
	return allocs, total, nil
}

// DefaultNodeConfig is used for keys missing from node.ini
func DefaultNodeConfig() *NodeConfig {
	return &NodeConfig{
		Store: store.StoreConfig{
			Type:      store.LevelDBStoreType,
			Directory: DefaultStoreDirectory,
		},
		RPC: RPCConfig{
			ListenAddr:  DefaultRPCAddr,
			CORSOrigins: DefaultCORSOrigins,
		},
		Metrics: MetricsConfig{
			ListenAddr: DefaultMetricsAddr,
		},
		RateLimit: RateLimitConfig{
			IPMaxRequests:     DefaultIPMaxRequests,
			WalletMaxRequests: DefaultWalletMaxRequests,
			Window:            DefaultRateLimitWindow,
		},
	}
}

// LoadNodeConfig reads node.ini section by section over the defaults. An empty path
// returns the defaults.
func LoadNodeConfig(path string) (*NodeConfig, error) {
	nodeCfg := DefaultNodeConfig()
	if path == "" {
		return nodeCfg, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	sections := []struct {
		name   string
		target interface{}
	}{
		{"store", &nodeCfg.Store},
		{"log", &nodeCfg.Log},
		{"rpc", &nodeCfg.RPC},
		{"metrics", &nodeCfg.Metrics},
		{"ratelimit", &nodeCfg.RateLimit},
	}
	for _, s := range sections {
		if !cfg.HasSection(s.name) {
			continue
		}
		if err := cfg.Section(s.name).MapTo(s.target); err != nil {
			return nil, fmt.Errorf("section [%s]: %w", s.name, err)
		}
	}

	if err := nodeCfg.Store.Validate(); err != nil {
		return nil, fmt.Errorf("section [store]: %w", err)
	}
	return nodeCfg, nil
}

// CORSOriginList splits the comma separated cors_origins value
func (c RPCConfig) CORSOriginList() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
