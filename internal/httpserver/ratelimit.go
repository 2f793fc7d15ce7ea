package httpserver

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/dkotl/macrolog/internal/config"
	"golang.org/x/time/rate"
)

// visitors tracks one token bucket per client IP. The map is swept every
// sweepEvery lookups so long-running servers do not accumulate buckets
// for clients that stopped calling.
type visitors struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
	lookups int64
}

const sweepEvery = 1024

func newVisitors(rps, burst int) *visitors {
	return &visitors{
		buckets: make(map[string]*rate.Limiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (v *visitors) bucket(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	b, ok := v.buckets[ip]
	if !ok {
		b = rate.NewLimiter(v.rps, v.burst)
		v.buckets[ip] = b
	}

	v.lookups++
	if v.lookups%sweepEvery == 0 {
		v.sweep()
	}
	return b
}

// sweep drops buckets that have refilled to capacity. A full bucket means
// the client has been idle for at least burst/rps seconds.
func (v *visitors) sweep() {
	for ip, b := range v.buckets {
		if b.Tokens() >= float64(v.burst) {
			delete(v.buckets, ip)
		}
	}
}

var rateLimitedBody = []byte(`{"error":{"code":"rate_limited","message":"Too many requests"}}`)

// RateLimitMiddleware applies a per-IP token bucket in front of the mux.
// A non-positive RateLimitRPS disables it entirely; a non-positive burst
// defaults to the RPS value.
func RateLimitMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	if cfg.RateLimitRPS <= 0 {
		return next
	}

	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = cfg.RateLimitRPS
	}
	reg := newVisitors(cfg.RateLimitRPS, burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !reg.bucket(clientIP(r)).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write(rateLimitedBody)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the caller address, trusting the first hop of
// X-Forwarded-For when a proxy set it.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
