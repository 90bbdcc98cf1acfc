// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/danielhkuo/quickpoll/auth"
	"github.com/danielhkuo/quickpoll/poll"
)

// idleLimiterTTL is how long an unused limiter is kept before it is swept
const idleLimiterTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per principal, or per hashed client IP for
// anonymous callers. The client IP is the connection's peer address unless
// trustProxy is set, in which case proxy headers are honored.
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	salt       string
	trustProxy bool

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(rps float64, burst int, salt string, trustProxy bool) *RateLimiter {
	return &RateLimiter{
		limit:      rate.Limit(rps),
		burst:      burst,
		salt:       salt,
		trustProxy: trustProxy,
		visitors:   make(map[string]*visitor),
		now:        time.Now,
	}
}

// Limit must run after WithPrincipal so that the principal is known
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := rl.key(r)
		if !rl.allow(key) {
			slog.Warn("rate limit exceeded", "key", key, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			ErrorResponse(w, http.StatusTooManyRequests, "Too many requests, slow down")
			return
		}
		next(w, r)
	}
}

func (rl *RateLimiter) key(r *http.Request) string {
	if p, ok := poll.PrincipalFrom(r.Context()); ok {
		return "p:" + string(p)
	}
	return "ip:" + auth.HashIP(rl.clientIP(r), rl.salt)
}

// clientIP ignores X-Forwarded-For unless a trusted proxy sets it; otherwise
// any caller could pick a fresh bucket per request.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if rl.trustProxy {
		return GetClientIP(r)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > idleLimiterTTL {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > idleLimiterTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Tracked returns how many keys currently hold a limiter
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}
