package config

import (
	"time"

	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/store"
)

// TokenConfig is the token metadata served to clients. It has no effect on balances.
type TokenConfig struct {
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Decimals uint8  `yaml:"decimals"`
}

// AllocConfig is one genesis allocation; Amount is a decimal or 0x hex string.
type AllocConfig struct {
	Address string `yaml:"address"`
	Amount  string `yaml:"amount"`
}

// GenesisConfig holds the configuration from genesis.yml
type GenesisConfig struct {
	Token TokenConfig   `yaml:"token"`
	Alloc []AllocConfig `yaml:"alloc"`
}

// ConfigFile is the top-level structure for genesis.yml
type ConfigFile struct {
	Config GenesisConfig `yaml:"config"`
}

type RPCConfig struct {
	ListenAddr  string `ini:"listen_addr"`
	CORSOrigins string `ini:"cors_origins"`
}

type MetricsConfig struct {
	ListenAddr string `ini:"listen_addr"`
}

// RateLimitConfig bounds JSON-RPC requests per client IP and transfers per sender.
// Zero disables a limit.
type RateLimitConfig struct {
	IPMaxRequests     int           `ini:"ip_max_requests"`
	WalletMaxRequests int           `ini:"wallet_max_requests"`
	Window            time.Duration `ini:"window"`
}

// NodeConfig is everything read from node.ini
type NodeConfig struct {
	Store     store.StoreConfig
	Log       logx.LogConfig
	RPC       RPCConfig
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
}
