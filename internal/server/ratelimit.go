package server

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"wazivo/internal/config"
	"wazivo/internal/errors"

	"golang.org/x/time/rate"
)

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decides whether a keyed request may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Backend() string
	GetStats() map[string]any
	Close() error
}

// NewLimiter builds the configured limiter backend. It returns nil when rate
// limiting is disabled.
func NewLimiter(cfg *config.RateLimitConfig, logger *errors.Logger) (Limiter, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	if cfg.Backend == "redis" {
		limiter, err := NewRedisLimiter(*cfg, logger)
		if err != nil {
			return nil, err
		}
		return limiter, nil
	}
	return NewRateLimiter(cfg.RequestsPerMin, cfg.Window, cfg.BurstCapacity, logger), nil
}

// LimiterManager manages a collection of token bucket limiters for different
// keys (IPs, API keys) in process memory.
type LimiterManager struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	done     chan struct{} // Channel to signal cleanup goroutine to stop
	logger   *errors.Logger
}

// RateLimiter is the in-memory limiter
type RateLimiter = LimiterManager

// NewRateLimiter creates a new manager. requestsPerMin requests are allowed
// per window, refilled evenly; burstCapacity is the token bucket size.
func NewRateLimiter(requestsPerMin int, window time.Duration, burstCapacity int, logger *errors.Logger) *LimiterManager {
	if window <= 0 {
		window = time.Minute
	}
	if burstCapacity <= 0 {
		burstCapacity = max(requestsPerMin, 1)
	}

	m := &LimiterManager{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requestsPerMin) / window.Seconds()),
		burst:    burstCapacity,
		done:     make(chan struct{}),
		logger:   logger,
	}

	go m.cleanupRoutine(10 * time.Minute)
	return m
}

// GetLimiter retrieves or creates a limiter for a given key.
func (m *LimiterManager) GetLimiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, exists := m.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = limiter
	}
	m.lastSeen[key] = time.Now()

	return limiter
}

// Allow consumes a token for key when one is available. A rejected request
// learns how long until the next token.
func (m *LimiterManager) Allow(_ context.Context, key string) (Decision, error) {
	limiter := m.GetLimiter(key)

	now := time.Now()
	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return Decision{Allowed: false, RetryAfter: time.Minute}, nil
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true}, nil
}

// Backend names the limiter implementation
func (m *LimiterManager) Backend() string { return "memory" }

// GetStats returns current rate limiter statistics
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"backend":         m.Backend(),
		"active_limiters": len(m.limiters),
		"rate_per_second": float64(m.rate),
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
	}
}

// cleanupRoutine periodically removes inactive limiters
func (m *LimiterManager) cleanupRoutine(cleanupInterval time.Duration) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(cleanupInterval)
		case <-m.done:
			return
		}
	}
}

// cleanup removes limiters that haven't been used for the specified duration
func (m *LimiterManager) cleanup(evictionAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, lastSeen := range m.lastSeen {
		if now.Sub(lastSeen) > evictionAge {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
		}
	}

	m.logger.Debug("Rate limiter cleanup completed", "remaining_limiters", len(m.limiters))
}

// Close stops the cleanup goroutine
func (m *LimiterManager) Close() error {
	close(m.done)
	return nil
}

// rateLimitMiddleware rejects requests over quota with 429 and Retry-After.
// Limiter backend failures let the request through.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		key, scope := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
		if key == "" {
			next(w, r)
			return
		}

		decision, err := s.RateLimiter.Allow(r.Context(), key)
		if err != nil {
			s.requestLogger(r).LogError(err, "Rate limiter unavailable, allowing request",
				"backend", s.RateLimiter.Backend())
			next(w, r)
			return
		}

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			retryAfter = max(retryAfter, 1)

			s.metrics.RecordRateLimitHit(r.Context(), s.RateLimiter.Backend(), scope)
			s.requestLogger(r).Info("Rate limit exceeded",
				"scope", scope,
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"retry_after", retryAfter)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			s.writeError(w, r, errors.NewValidationError(errors.ErrCodeRateLimitExceeded, "rate limit exceeded", nil).
				WithContext("retry_after", retryAfter))
			return
		}

		next(w, r)
	}
}

// getRateLimitKey picks the bucket for a request and names its scope
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) (key, scope string) {
	if byAPIKey {
		if apiKey := extractAPIKey(r); apiKey != "" {
			return "api:" + apiKey, "api_key"
		}
	}

	if byIP {
		return "ip:" + getClientIP(r), "ip"
	}

	return "", ""
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first valid IP from a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if parsed := net.ParseIP(ip); parsed != nil {
			return ip
		}
	}
	return ""
}
