package ratelimit

import (
	"sync"
	"time"

	"github.com/mezonai/token/logx"
)

type RateLimiterConfig struct {
	MaxRequests     int           `ini:"max_requests"`
	WindowSize      time.Duration `ini:"window"`
	CleanupInterval time.Duration `ini:"cleanup_interval"`
}

func DefaultConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		MaxRequests:     100,
		WindowSize:      time.Second,
		CleanupInterval: 5 * time.Minute, // cleanup every 5 minutes
	}
}

type rateLimiterData struct {
	currentCount int
	windowStart  time.Time
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter struct {
	config      *RateLimiterConfig
	requests    map[string]*rateLimiterData
	mu          sync.Mutex
	stopCleanup chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

func NewRateLimiter(config *RateLimiterConfig) *RateLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	rl := &RateLimiter{
		config:      config,
		requests:    make(map[string]*rateLimiterData),
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}

	go rl.cleanupExpiredEntries()

	return rl
}

// Allow reports whether key may make another request in the current window.
// A non-positive MaxRequests disables the limit.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.config.MaxRequests <= 0 {
		return true
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	data, exists := rl.requests[key]
	if !exists {
		data = &rateLimiterData{windowStart: now}
		rl.requests[key] = data
	}

	if now.Sub(data.windowStart) >= rl.config.WindowSize {
		data.currentCount = 0
		data.windowStart = now
	}

	if data.currentCount >= rl.config.MaxRequests {
		return false
	}

	data.currentCount++
	return true
}

func (rl *RateLimiter) cleanupExpiredEntries() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.config.WindowSize)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, data := range rl.requests {
		if data.windowStart.Before(cutoff) {
			delete(rl.requests, key)
		}
	}
}

func (rl *RateLimiter) trackedKeys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.requests)
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// GlobalRateLimiter limits JSON-RPC traffic per client IP and transfers per sender.
type GlobalRateLimiter struct {
	ipLimiter     *RateLimiter
	walletLimiter *RateLimiter
}

type GlobalRateLimiterConfig struct {
	IPConfig     *RateLimiterConfig
	WalletConfig *RateLimiterConfig
}

func DefaultGlobalConfig() *GlobalRateLimiterConfig {
	return &GlobalRateLimiterConfig{
		IPConfig: &RateLimiterConfig{
			MaxRequests:     100,
			WindowSize:      time.Second,
			CleanupInterval: 5 * time.Minute,
		},
		WalletConfig: &RateLimiterConfig{
			MaxRequests:     10,
			WindowSize:      time.Second,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

func NewGlobalRateLimiter(config *GlobalRateLimiterConfig) *GlobalRateLimiter {
	if config == nil {
		config = DefaultGlobalConfig()
	}

	return &GlobalRateLimiter{
		ipLimiter:     NewRateLimiter(config.IPConfig),
		walletLimiter: NewRateLimiter(config.WalletConfig),
	}
}

func (grl *GlobalRateLimiter) AllowIP(ip string) bool {
	if !grl.ipLimiter.Allow(ip) {
		logx.Warn("SECURITY", "Rate limited IP: ", ip)
		return false
	}
	return true
}

func (grl *GlobalRateLimiter) AllowWallet(wallet string) bool {
	if !grl.walletLimiter.Allow(wallet) {
		logx.Warn("SECURITY", "Rate limited wallet: ", wallet)
		return false
	}
	return true
}

func (grl *GlobalRateLimiter) Stop() {
	grl.ipLimiter.Stop()
	grl.walletLimiter.Stop()
}
