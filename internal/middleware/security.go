package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mindful-journal/journal-backend/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// HostCheck returns 403 when r.Host does not match allowedHost.
// allowedHost should be the bare hostname without scheme or port.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), strings.TrimSpace(allowedHost)) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// IPRateLimiter hands out one token bucket per client IP and forgets IPs
// that have been idle for longer than ttl.
type IPRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

func NewIPRateLimiter(limit rate.Limit, burst int, ttl time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Allow reports whether ip may make a request now.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = now
	return e.limiter.AllowN(now, 1)
}

// Cleanup drops idle entries.
func (l *IPRateLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for ip, e := range l.entries {
		if now.Sub(e.lastUse) > l.ttl {
			delete(l.entries, ip)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (l *IPRateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}

// Middleware returns 429 with message once the caller's bucket is empty.
// When paths is non-empty only those paths are limited.
func (l *IPRateLimiter) Middleware(message string, paths ...string) func(http.Handler) http.Handler {
	only := make(map[string]bool, len(paths))
	for _, p := range paths {
		only[p] = true
	}
	body := []byte(`{"error":"` + message + `"}`)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(only) > 0 && !only[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !l.Allow(clientip.RealClientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write(body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	globalRateLimitRPS     = 5
	globalRateLimitBurst   = 20
	loginRateLimitEvery    = 5 * time.Second
	loginRateLimitBurst    = 3
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

// credentialPaths are the routes that check passwords.
var credentialPaths = []string{"/api/login", "/api/register"}

// ProductionSecurity returns middlewares for production:
// SecurityHeaders → HostCheck → global per-IP limit → credential route limit.
// The limiters' cleanup loops stop when ctx is done.
func ProductionSecurity(ctx context.Context, allowedHost string) []func(http.Handler) http.Handler {
	global := NewIPRateLimiter(rate.Limit(globalRateLimitRPS), globalRateLimitBurst, limiterTTL)
	login := NewIPRateLimiter(rate.Every(loginRateLimitEvery), loginRateLimitBurst, limiterTTL)
	global.StartCleanup(ctx, limiterCleanupInterval)
	login.StartCleanup(ctx, limiterCleanupInterval)

	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		HostCheck(allowedHost),
		global.Middleware("Too many requests. Please slow down."),
		login.Middleware("Too many login attempts. Please try again later.", credentialPaths...),
	}
}
