package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/templui/catalog/internal/httpx"
)

// RateLimiter allows at most limit attempts per key within a sliding window
type RateLimiter struct {
	mu        sync.Mutex
	attempts  map[string][]time.Time // oldest first
	limit     int
	window    time.Duration
	lastSweep time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		attempts:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		lastSweep: time.Now(),
	}
}

// Allow records an attempt for key and reports whether it is within the limit
func (rl *RateLimiter) Allow(key string) bool {
	ok, _ := rl.take(key)
	return ok
}

// take records an attempt for key. Rejected attempts are not recorded and
// report how long until the oldest attempt leaves the window.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweep(now)

	recent := after(rl.attempts[key], now.Add(-rl.window))
	if len(recent) >= rl.limit {
		rl.attempts[key] = recent
		return false, recent[0].Add(rl.window).Sub(now)
	}

	rl.attempts[key] = append(recent, now)
	return true, 0
}

// sweep drops idle keys at most once per window
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now

	cutoff := now.Add(-rl.window)
	for key, times := range rl.attempts {
		if len(after(times, cutoff)) == 0 {
			delete(rl.attempts, key)
		}
	}
}

func after(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

// RateLimitLogin allows 5 login attempts per 15 minutes per client IP
func RateLimitLogin(trusted []netip.Prefix) func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(NewRateLimiter(5, 15*time.Minute), trusted)
}

// RateLimit rejects clients over the limiter with a JSON 429 and Retry-After.
// Forwarding headers identify the client only when the peer is a trusted proxy.
func RateLimit(limiter *RateLimiter, trusted []netip.Prefix) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trusted)

			ok, wait := limiter.take(ip)
			if !ok {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
				httpx.WriteError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}

			next(w, r)
		}
	}
}

func retryAfterSeconds(wait time.Duration) int {
	return max(1, int(math.Ceil(wait.Seconds())))
}

// clientIP returns the connection address unless it is a trusted proxy. Then the
// X-Forwarded-For chain is walked from the right, skipping trusted hops, with
// X-Real-IP as the fallback.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !isTrusted(peer, trusted) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if i == 0 || !isTrusted(hop, trusted) {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return peer
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
