package httpx

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	signupRateLimitDefault  = 5
	signupRateWindowDefault = time.Minute
	rateSweepInterval       = 5 * time.Minute
)

// RateLimiter counts sign-up attempts per client address in fixed windows.
// The limit and window are fixed when the limiter is built.
type RateLimiter interface {
	Allow(ctx context.Context, client string) rateDecision
	Close()
}

type rateDecision struct {
	allowed bool
	limit   int
	count   int
	resetAt time.Time
}

func (d rateDecision) remaining() int {
	return max(d.limit-d.count, 0)
}

type signupWindow struct {
	count   int
	resetAt time.Time
}

// memoryRateLimiter keeps windows in process memory. A background sweep
// drops windows that have ended.
type memoryRateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]signupWindow
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func newMemoryRateLimiter(limit int, window time.Duration) *memoryRateLimiter {
	rl := &memoryRateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]signupWindow),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweep(rateSweepInterval)
	return rl
}

func (rl *memoryRateLimiter) Allow(_ context.Context, client string) rateDecision {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[client]
	if !ok || !now.Before(w.resetAt) {
		w = signupWindow{resetAt: now.Add(rl.window)}
	}
	if w.count < rl.limit {
		w.count++
		rl.clients[client] = w
		return rateDecision{allowed: true, limit: rl.limit, count: w.count, resetAt: w.resetAt}
	}
	return rateDecision{limit: rl.limit, count: w.count, resetAt: w.resetAt}
}

func (rl *memoryRateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.dropExpired(rl.now())
		case <-rl.stop:
			return
		}
	}
}

func (rl *memoryRateLimiter) dropExpired(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for client, w := range rl.clients {
		if !now.Before(w.resetAt) {
			delete(rl.clients, client)
		}
	}
}

func (rl *memoryRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// withSignupRateLimit rejects a client address once it used up its window.
func (r *Router) withSignupRateLimit(next http.HandlerFunc) http.HandlerFunc {
	if r.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, req *http.Request) {
		decision := r.limiter.Allow(req.Context(), remoteIP(req))
		setRateHeaders(w.Header(), decision)
		if !decision.allowed {
			r.recordRateLimitHit(routeSignup)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, req)
	}
}

func setRateHeaders(h http.Header, d rateDecision) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining()))
	if !d.resetAt.IsZero() {
		h.Set("X-RateLimit-Reset", strconv.FormatInt(d.resetAt.Unix(), 10))
	}
}

// remoteIP is the connection's peer address. Forwarding headers are ignored
// so clients cannot pick their own bucket.
func remoteIP(req *http.Request) string {
	addr := strings.TrimSpace(req.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return "unknown"
	}
	return addr
}
