package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces sliding-window limits across all callers plus a
// token bucket per client key
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int
	requestsPerDay    int
	enabled           bool

	// Request tracking
	minuteWindow []time.Time
	hourWindow   []time.Time
	dayWindow    []time.Time

	clientRate  rate.Limit
	clientBurst int
	clients     map[string]*client

	now func() time.Time
	mu  sync.Mutex
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// idleClientTTL is how long an unused client bucket is kept
const idleClientTTL = 10 * time.Minute

// NewRateLimiter creates a new rate limiter with the given global limits.
// Zero hour/day limits are unlimited.
func NewRateLimiter(requestsPerMinute, requestsPerHour, requestsPerDay int, enabled bool) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		requestsPerDay:    requestsPerDay,
		enabled:           enabled,
		minuteWindow:      make([]time.Time, 0),
		hourWindow:        make([]time.Time, 0),
		dayWindow:         make([]time.Time, 0),
		clientRate:        rate.Inf,
		clients:           make(map[string]*client),
		now:               time.Now,
	}
}

// WithClientLimit enables per-client buckets refilled at perMinute with the given burst
func (rl *RateLimiter) WithClientLimit(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		return rl
	}
	if burst <= 0 {
		burst = 1
	}
	rl.clientRate = rate.Limit(float64(perMinute) / 60.0)
	rl.clientBurst = burst
	return rl
}

// AllowRequest checks if a request from clientKey is allowed.
// Returns true if allowed, false if a limit is exceeded.
func (rl *RateLimiter) AllowRequest(clientKey string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanup(now)

	if rl.requestsPerMinute > 0 && len(rl.minuteWindow) >= rl.requestsPerMinute {
		return false
	}
	if rl.requestsPerHour > 0 && len(rl.hourWindow) >= rl.requestsPerHour {
		return false
	}
	if rl.requestsPerDay > 0 && len(rl.dayWindow) >= rl.requestsPerDay {
		return false
	}

	if rl.clientRate != rate.Inf {
		c, ok := rl.clients[clientKey]
		if !ok {
			c = &client{limiter: rate.NewLimiter(rl.clientRate, rl.clientBurst)}
			rl.clients[clientKey] = c
		}
		c.lastSeen = now
		if !c.limiter.AllowN(now, 1) {
			return false
		}
	}

	// Record the request
	rl.minuteWindow = append(rl.minuteWindow, now)
	rl.hourWindow = append(rl.hourWindow, now)
	rl.dayWindow = append(rl.dayWindow, now)

	return true
}

// cleanup removes expired entries from the time windows and idle clients
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.minuteWindow = filterTimes(rl.minuteWindow, now.Add(-time.Minute))
	rl.hourWindow = filterTimes(rl.hourWindow, now.Add(-time.Hour))
	rl.dayWindow = filterTimes(rl.dayWindow, now.Add(-24*time.Hour))

	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > idleClientTTL {
			delete(rl.clients, key)
		}
	}
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats() Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanup(rl.now())

	return Stats{
		Enabled:             true,
		RequestsLastMinute:  len(rl.minuteWindow),
		RequestsLastHour:    len(rl.hourWindow),
		RequestsLastDay:     len(rl.dayWindow),
		LimitPerMinute:      rl.requestsPerMinute,
		LimitPerHour:        rl.requestsPerHour,
		LimitPerDay:         rl.requestsPerDay,
		RemainingThisMinute: remaining(rl.requestsPerMinute, len(rl.minuteWindow)),
		RemainingThisHour:   remaining(rl.requestsPerHour, len(rl.hourWindow)),
		RemainingThisDay:    remaining(rl.requestsPerDay, len(rl.dayWindow)),
		TrackedClients:      len(rl.clients),
	}
}

// Stats contains rate limiter statistics. Remaining is -1 for unlimited windows.
type Stats struct {
	Enabled             bool `json:"enabled"`
	RequestsLastMinute  int  `json:"requests_last_minute"`
	RequestsLastHour    int  `json:"requests_last_hour"`
	RequestsLastDay     int  `json:"requests_last_day"`
	LimitPerMinute      int  `json:"limit_per_minute"`
	LimitPerHour        int  `json:"limit_per_hour"`
	LimitPerDay         int  `json:"limit_per_day"`
	RemainingThisMinute int  `json:"remaining_this_minute"`
	RemainingThisHour   int  `json:"remaining_this_hour"`
	RemainingThisDay    int  `json:"remaining_this_day"`
	TrackedClients      int  `json:"tracked_clients"`
}

// Reset clears all tracked requests
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.minuteWindow = make([]time.Time, 0)
	rl.hourWindow = make([]time.Time, 0)
	rl.dayWindow = make([]time.Time, 0)
	rl.clients = make(map[string]*client)
}

func remaining(limit, used int) int {
	if limit <= 0 {
		return -1
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
