package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/common"
	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/guards"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type ctxKey string

const (
	requestIDKey ctxKey = "requestID"
	profileKey   ctxKey = "profile"
)

const requestIDHeader = "X-Request-ID"

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger stores a logger tagged with the request id in the context.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(requestIDKey).(string)
		l := s.logger.With("request_id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), l)))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.fail(w, r, fmt.Errorf("%w: panic: %v", common.ErrorInternal, v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the bearer token to a profile. Requests without a
// valid token continue anonymously; guards decide what they may reach.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		p, err := s.svc.Auth.Authenticate(ctx, token)
		if err != nil {
			logging.FromContext(ctx, s.logger).Info(ctx, "token rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if s.svc.BackOffice != nil && s.presence.due(p.ID) {
			if err := s.svc.BackOffice.Touch(ctx, p.ID); err != nil {
				logging.FromContext(ctx, s.logger).Warn(ctx, "presence update failed", "error", err)
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, profileKey, p)))
	})
}

func profileFrom(ctx context.Context) *models.Profile {
	p, _ := ctx.Value(profileKey).(*models.Profile)
	return p
}

// guard applies gs in order; the first denial answers the request with the
// redirect target.
func (s *Server) guard(gs ...guards.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := profileFrom(r.Context())
			d := guards.Chain(p, gs...)
			if d.Allow {
				next.ServeHTTP(w, r)
				return
			}
			status := http.StatusForbidden
			if p == nil {
				status = http.StatusUnauthorized
			}
			writeJSON(w, status, errorBody{Error: d.Reason, Redirect: d.Redirect})
		})
	}
}

// presence throttles last_seen writes to one per user per interval.
type presence struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

func newPresence(interval time.Duration) *presence {
	return &presence{interval: interval, last: make(map[string]time.Time), now: time.Now}
}

func (p *presence) due(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	if t, ok := p.last[userID]; ok && now.Sub(t) < p.interval {
		return false
	}
	p.last[userID] = now
	return true
}

// RateLimiter limits requests per client address. Forwarding headers are
// honoured only when the peer is one of the trusted proxies.
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	trusted  []*net.IPNet
	now      func() time.Time
	logger   logging.Logger
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns a limiter allowing requestsPerSecond with burst.
// A non-positive rate disables limiting. trustedProxies holds IPs or CIDRs;
// malformed entries are logged and skipped.
func NewRateLimiter(requestsPerSecond float64, burst int, trustedProxies []string, logger logging.Logger) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		trusted:  parseProxies(trustedProxies, logger),
		now:      time.Now,
		logger:   logger,
	}
}

func parseProxies(list []string, logger logging.Logger) []*net.IPNet {
	var out []*net.IPNet
	for _, p := range list {
		if !strings.Contains(p, "/") {
			if ip := net.ParseIP(p); ip != nil && ip.To4() != nil {
				p += "/32"
			} else {
				p += "/128"
			}
		}
		_, n, err := net.ParseCIDR(p)
		if err != nil {
			logger.Warn(context.Background(), "ignoring trusted proxy", "value", p, "error", err)
			continue
		}
		out = append(out, n)
	}
	return out
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, exists := rl.limiters[key]
	if !exists {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = rl.now()
	return e.limiter
}

// Cleanup drops limiters idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	for key, e := range rl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(maxIdle)
			}
		}
	}()
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.rate <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		key := rl.clientIP(r)
		if !rl.getLimiter(key).Allow() {
			ctx := r.Context()
			logging.FromContext(ctx, rl.logger).Warn(ctx, "rate limit exceeded", "key", key)
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many attempts. Please wait and try again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the peer address, or the forwarded client address when
// the peer is a trusted proxy.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !rl.isTrusted(host) {
		return host
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// Walk right to left and stop at the first hop we do not operate.
		parts := strings.Split(forwarded, ",")
		for i := len(parts) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(parts[i])
			if hop != "" && !rl.isTrusted(hop) {
				return hop
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return host
}

func (rl *RateLimiter) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range rl.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
