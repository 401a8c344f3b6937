package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter(perMinute, perHour, perDay int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(perMinute, perHour, perDay, true)
	rl.now = clock.now
	return rl, clock
}

func TestAllowRequest_MinuteWindow(t *testing.T) {
	rl, clock := newTestLimiter(3, 0, 0)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.AllowRequest("a"), "request %d", i)
	}
	assert.False(t, rl.AllowRequest("b"))

	clock.advance(61 * time.Second)
	assert.True(t, rl.AllowRequest("a"))
}

func TestAllowRequest_HourWindow(t *testing.T) {
	rl, clock := newTestLimiter(10, 2, 0)

	assert.True(t, rl.AllowRequest("a"))
	clock.advance(2 * time.Minute)
	assert.True(t, rl.AllowRequest("a"))
	clock.advance(2 * time.Minute)
	assert.False(t, rl.AllowRequest("a"))

	clock.advance(time.Hour)
	assert.True(t, rl.AllowRequest("a"))
}

func TestAllowRequest_PerClient(t *testing.T) {
	rl, clock := newTestLimiter(100, 0, 0)
	rl.WithClientLimit(60, 2)

	assert.True(t, rl.AllowRequest("10.0.0.1"))
	assert.True(t, rl.AllowRequest("10.0.0.1"))
	assert.False(t, rl.AllowRequest("10.0.0.1"))
	// other clients have their own bucket
	assert.True(t, rl.AllowRequest("10.0.0.2"))

	// one token per second
	clock.advance(time.Second)
	assert.True(t, rl.AllowRequest("10.0.0.1"))
}

func TestRejectedRequestsAreNotCounted(t *testing.T) {
	rl, _ := newTestLimiter(100, 0, 0)
	rl.WithClientLimit(60, 1)

	assert.True(t, rl.AllowRequest("a"))
	assert.False(t, rl.AllowRequest("a"))
	assert.False(t, rl.AllowRequest("a"))

	assert.Equal(t, 1, rl.GetStats().RequestsLastMinute)
}

func TestDisabled(t *testing.T) {
	rl := NewRateLimiter(1, 1, 1, false)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.AllowRequest("a"))
	}
	assert.False(t, rl.GetStats().Enabled)
}

func TestGetStatsAndReset(t *testing.T) {
	rl, clock := newTestLimiter(5, 10, 0)
	rl.WithClientLimit(60, 5)

	rl.AllowRequest("a")
	rl.AllowRequest("b")

	stats := rl.GetStats()
	assert.True(t, stats.Enabled)
	assert.Equal(t, 2, stats.RequestsLastMinute)
	assert.Equal(t, 3, stats.RemainingThisMinute)
	assert.Equal(t, 8, stats.RemainingThisHour)
	assert.Equal(t, -1, stats.RemainingThisDay)
	assert.Equal(t, 2, stats.TrackedClients)

	clock.advance(idleClientTTL + time.Minute)
	assert.Equal(t, 0, rl.GetStats().TrackedClients)

	rl.AllowRequest("a")
	rl.Reset()
	stats = rl.GetStats()
	assert.Equal(t, 0, stats.RequestsLastHour)
	assert.Equal(t, 0, stats.TrackedClients)
}
