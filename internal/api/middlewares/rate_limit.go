package middlewares

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

const limiterIdleTTL = 10 * time.Minute

// clientLimiter keeps one token bucket per client ip and drops idle buckets.
type clientLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	byIP    map[string]*limiterEntry
	hits    uint64
	idleTTL time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		byIP:    make(map[string]*limiterEntry),
		idleTTL: limiterIdleTTL,
	}
}

func (l *clientLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byIP[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byIP[ip] = e
	}
	e.lastSeen = now

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byIP {
			if v.lastSeen.Before(cutoff) {
				delete(l.byIP, k)
			}
		}
	}
	return e.limiter.AllowN(now, 1)
}

// RateLimitMiddleware throttles POST requests per client. It is a no-op when
// server.rate-limit-rps is not set.
func RateLimitMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg.Server.RateLimitRPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	burst := cfg.Server.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	limiter := newClientLimiter(cfg.Server.RateLimitRPS, burst)
	// validated at startup
	trusted, _ := cfg.Server.TrustedProxyNets()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			ip := clientIP(r, trusted)
			if !limiter.allow(ip, time.Now()) {
				log.Ctx(r.Context()).Warn().Str("clientIp", ip).Msg("rate limit exceeded")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"errorCode": types.TooManyRequests.String(),
					"message":   "too many requests, slow down",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the peer address unless the peer is a trusted proxy, then it is
// the right-most X-Forwarded-For entry not added by a trusted proxy.
func clientIP(r *http.Request, trusted []*net.IPNet) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !isTrustedProxy(peer, trusted) {
		return peer
	}
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrustedProxy(hop, trusted) {
			return hop
		}
	}
	return peer
}

func isTrustedProxy(ip string, trusted []*net.IPNet) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}
