// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"golang.org/x/time/rate"
)

// RateLimitConfig throttles mutating requests per client address.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client. Zero disables limiting.
	RequestsPerSecond float64
	// Burst is the bucket size per client.
	Burst int
	// MaxClients caps the number of tracked addresses. Default: 10000.
	MaxClients int
}

// Validate checks the configuration and applies defaults.
func (c *RateLimitConfig) Validate() error {
	if c.RequestsPerSecond < 0 {
		return graphdlerr.Errorf(graphdlerr.CodeServerConfigInvalid,
			"rate limit requests per second must not be negative (got %g)", c.RequestsPerSecond)
	}
	if c.RequestsPerSecond > 0 && c.Burst <= 0 {
		return graphdlerr.Errorf(graphdlerr.CodeServerConfigInvalid,
			"rate limit burst must be positive when rate is set (got burst=%d, rate=%g)",
			c.Burst, c.RequestsPerSecond)
	}
	if c.MaxClients < 0 {
		return graphdlerr.Errorf(graphdlerr.CodeServerConfigInvalid,
			"rate limit max clients must not be negative (got %d)", c.MaxClients)
	}
	if c.MaxClients == 0 {
		c.MaxClients = 10000
	}
	return nil
}

const (
	sweepInterval = 5 * time.Minute
	idleAfter     = 10 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// writeLimiter keeps one token bucket per client address.
type writeLimiter struct {
	cfg     RateLimitConfig
	logger  *slog.Logger
	mu      sync.Mutex
	clients map[string]*client
}

func newWriteLimiter(cfg RateLimitConfig, logger *slog.Logger) *writeLimiter {
	return &writeLimiter{cfg: cfg, logger: logger, clients: make(map[string]*client)}
}

func (l *writeLimiter) allow(addr string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[addr]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.clients[addr] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// sweep forgets idle clients and evicts the least recently seen ones
// beyond MaxClients.
func (l *writeLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for addr, c := range l.clients {
		if now.Sub(c.lastSeen) > idleAfter {
			delete(l.clients, addr)
		}
	}

	excess := len(l.clients) - l.cfg.MaxClients
	if l.cfg.MaxClients <= 0 || excess <= 0 {
		return
	}
	addrs := make([]string, 0, len(l.clients))
	for addr := range l.clients {
		addrs = append(addrs, addr)
	}
	slices.SortFunc(addrs, func(a, b string) int {
		return l.clients[a].lastSeen.Compare(l.clients[b].lastSeen)
	})
	for _, addr := range addrs[:excess] {
		delete(l.clients, addr)
	}
	l.logger.Warn("rate limiter client cap enforced",
		"evicted", excess, "max_clients", l.cfg.MaxClients)
}

func (l *writeLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *writeLimiter) sweepLoop(done <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			l.sweep(now)
		case <-done:
			return
		}
	}
}

// rateLimitMiddleware throttles non-safe methods per client address.
// Reads always pass. A zero rate returns a pass-through middleware.
func rateLimitMiddleware(cfg RateLimitConfig, logger *slog.Logger, done <-chan struct{}) func(http.Handler) http.Handler {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := newWriteLimiter(cfg, logger)
	go l.sweepLoop(done)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if !l.allow(clientAddr(r), time.Now()) {
				logger.Warn("rate limit exceeded", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()))
				w.Header().Set("Retry-After", "1")
				writeProblem(w, r, http.StatusTooManyRequests, string(graphdlerr.CodeServerRateLimited), "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// clientAddr strips the port so separate connections from one host share
// a bucket.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
