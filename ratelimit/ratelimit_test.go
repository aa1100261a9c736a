package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(max int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rl := NewRateLimiter(&RateLimiterConfig{MaxRequests: max, WindowSize: time.Second, CleanupInterval: time.Hour})
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiterWindow(t *testing.T) {
	rl, clock := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("a"), "request %d", i)
	}
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are independent")

	clock.advance(time.Second)
	assert.True(t, rl.Allow("a"), "new window")
}

func TestRateLimiterCleanup(t *testing.T) {
	rl, clock := newTestLimiter(1)
	defer rl.Stop()

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.trackedKeys())

	clock.advance(2 * time.Second)
	rl.Allow("c")
	rl.cleanup()
	assert.Equal(t, 1, rl.trackedKeys())
}

func TestRateLimiterDisabled(t *testing.T) {
	rl, _ := newTestLimiter(0)
	defer rl.Stop()

	for i := 0; i < 1000; i++ {
		assert.True(t, rl.Allow("a"))
	}
}

func TestGlobalRateLimiter(t *testing.T) {
	grl := NewGlobalRateLimiter(&GlobalRateLimiterConfig{
		IPConfig:     &RateLimiterConfig{MaxRequests: 2, WindowSize: time.Minute},
		WalletConfig: &RateLimiterConfig{MaxRequests: 1, WindowSize: time.Minute},
	})
	defer grl.Stop()

	assert.True(t, grl.AllowIP("10.0.0.1"))
	assert.True(t, grl.AllowIP("10.0.0.1"))
	assert.False(t, grl.AllowIP("10.0.0.1"))

	assert.True(t, grl.AllowWallet("alice"))
	assert.False(t, grl.AllowWallet("alice"))

	grl.Stop()
}
