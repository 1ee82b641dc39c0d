package handler

import (
	"net"
	"sync"
	"time"
)

// RateLimiter admits at most limit connections per remote host in each
// window. A limit of zero admits everyone.
type RateLimiter struct {
	limit       int
	window      time.Duration
	mu          sync.Mutex
	counters    map[string]int
	windowStart time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		window:      window,
		counters:    make(map[string]int),
		windowStart: time.Now(),
	}
}

func (rl *RateLimiter) Allow(host string) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.windowStart) >= rl.window {
		rl.counters = make(map[string]int)
		rl.windowStart = time.Now()
	}
	if rl.counters[host] >= rl.limit {
		return false
	}
	rl.counters[host]++
	return true
}

// hostOf strips the port from a remote address.
func hostOf(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
