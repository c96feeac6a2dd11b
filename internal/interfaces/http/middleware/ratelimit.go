package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo contains current rate limit state for a given key.
type RateLimitInfo struct {
	// Limit is the burst size.
	Limit int
	// Remaining is the number of whole tokens left.
	Remaining int
	// RetryAfter is how long until the next token, zero when allowed.
	RetryAfter time.Duration
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	// KeyFunc extracts the rate limit key.  Defaults to the client IP.
	KeyFunc func(r *http.Request) string
	// SkipPaths bypass rate limiting.
	SkipPaths []string
	// OnLimited is called for every rejected request.
	OnLimited func(r *http.Request)
}

// DefaultRateLimitConfig limits per client IP and never limits probes.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		KeyFunc:   ClientIPKeyFunc,
		SkipPaths: []string{"/healthz", "/readyz", "/metrics"},
	}
}

// ClientIPKeyFunc keys on X-Forwarded-For, then X-Real-IP, then the host part
// of RemoteAddr.
func ClientIPKeyFunc(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter keeps one rate.Limiter per key.  Keys idle for longer
// than the cleanup interval are dropped.
type TokenBucketLimiter struct {
	rate            rate.Limit
	burst           int
	cleanupInterval time.Duration

	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTokenBucketLimiter creates a limiter allowing rps sustained requests per
// second with bursts of burst.  A positive cleanupInterval starts a janitor
// goroutine that Stop terminates.
func NewTokenBucketLimiter(rps float64, burst int, cleanupInterval time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		rate:            rate.Limit(rps),
		burst:           burst,
		cleanupInterval: cleanupInterval,
		limiters:        make(map[string]*keyedLimiter),
		stop:            make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow consumes one token for key.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := time.Now()

	l.mu.Lock()
	kl, ok := l.limiters[key]
	if !ok {
		kl = &keyedLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = kl
	}
	kl.lastSeen = now
	l.mu.Unlock()

	info := RateLimitInfo{Limit: l.burst}
	if kl.limiter.AllowN(now, 1) {
		info.Remaining = int(math.Max(0, kl.limiter.TokensAt(now)))
		return true, info
	}

	// Reserve to learn the delay, then give the token back.
	res := kl.limiter.ReserveN(now, 1)
	if res.OK() {
		info.RetryAfter = res.DelayFrom(now)
		res.CancelAt(now)
	}
	return false, info
}

func (l *TokenBucketLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stop:
			return
		}
	}
}

func (l *TokenBucketLimiter) cleanup(now time.Time) {
	threshold := now.Add(-l.cleanupInterval)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, kl := range l.limiters {
		if kl.lastSeen.Before(threshold) {
			delete(l.limiters, key)
		}
	}
}

// Stop terminates the janitor goroutine.  Safe to call more than once.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// BucketCount returns the number of tracked keys.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// RateLimit returns middleware that answers 429 with a Retry-After header
// once a key runs out of tokens.
func RateLimit(limiter RateLimiter, config RateLimitConfig) func(http.Handler) http.Handler {
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = ClientIPKeyFunc
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipSet[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			allowed, info := limiter.Allow(keyFunc(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))

			if !allowed {
				retryAfter := int(math.Ceil(info.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				if config.OnLimited != nil {
					config.OnLimited(r)
				}
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"code":"RATE_LIMITED","message":"rate limit exceeded, please retry later"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

//Personal.AI order the ending
