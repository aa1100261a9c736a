package store

import (
	"fmt"

	"github.com/mezonai/token/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	MemoryStoreType  StoreType = "memory"
	LevelDBStoreType StoreType = "leveldb"
	BoltStoreType    StoreType = "bolt"
	SQLiteStoreType  StoreType = "sqlite"
	RedisStoreType   StoreType = "redis"
)

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `ini:"type" yaml:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `ini:"directory" yaml:"directory"`

	// RedisAddr and RedisDB are only read for the redis type
	RedisAddr string `ini:"redis_addr" yaml:"redis_addr"`
	RedisDB   int    `ini:"redis_db" yaml:"redis_db"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	switch sc.Type {
	case MemoryStoreType:
		return nil
	case LevelDBStoreType, BoltStoreType, SQLiteStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty for %s store", sc.Type)
		}
		return nil
	case RedisStoreType:
		if sc.RedisAddr == "" {
			return fmt.Errorf("redis_addr cannot be empty for redis store")
		}
		return nil
	case "":
		return fmt.Errorf("store type cannot be empty")
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// StoreFactory take responsibility to create store instances
type StoreFactory struct{}

// NewStoreFactory creates a new store factory
func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

// CreateStoreWithProvider opens one provider and builds every store on top of it
func (sf *StoreFactory) CreateStoreWithProvider(config *StoreConfig) (AccountStore, NonceStore, error) {
	provider, err := sf.CreateProvider(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create provider: %w", err)
	}

	accStore, err := NewGenericAccountStore(provider)
	if err != nil {
		_ = provider.Close()
		return nil, nil, fmt.Errorf("failed to create account store: %w", err)
	}

	nonceStore, err := NewGenericNonceStore(provider)
	if err != nil {
		_ = provider.Close()
		return nil, nil, fmt.Errorf("failed to create nonce store: %w", err)
	}

	return accStore, nonceStore, nil
}

// CreateProvider creates a database provider based on the configuration
func (sf *StoreFactory) CreateProvider(config *StoreConfig) (db.IterableProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case MemoryStoreType:
		return db.NewMemoryProvider(), nil

	case LevelDBStoreType:
		p, err := db.NewLevelDBProvider(config.Directory)
		if err != nil {
			return nil, err
		}
		return p, nil

	case BoltStoreType:
		p, err := db.NewBoltProvider(config.Directory)
		if err != nil {
			return nil, err
		}
		return p, nil

	case SQLiteStoreType:
		p, err := db.NewSQLiteProvider(config.Directory)
		if err != nil {
			return nil, err
		}
		return p, nil
	case RedisStoreType:
		// just for shared dev setups
		p, err := db.NewRedisProvider(config.RedisAddr, config.RedisDB)
		if err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// Global factory instance
var globalFactory = NewStoreFactory()

// CreateStore creates new store instances using the global factory
func CreateStore(config *StoreConfig) (AccountStore, NonceStore, error) {
	return globalFactory.CreateStoreWithProvider(config)
}
