package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"literary-analysis/internal/handler/http/respond"
)

var (
	rateLimitRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rate_limit_rejected_total",
		Help: "Requests rejected by the per-client rate limiter",
	}, []string{"limiter"})

	rateLimitClients = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_rate_limit_clients",
		Help: "Client buckets held by the rate limiter",
	}, []string{"limiter"})
)

// KeyFunc names the client a request is charged to.
type KeyFunc func(*http.Request) (netip.Addr, error)

// RateLimiter keeps one token bucket per client. IPv6 clients share a
// bucket per /64, the smallest block an end site is usually assigned.
type RateLimiter struct {
	name    string
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	key     KeyFunc
	now     func() time.Time

	mu      sync.Mutex
	buckets map[netip.Prefix]*bucket
}

type bucket struct {
	*rate.Limiter
	seen time.Time
}

// NewRateLimiter allows perMinute requests per client with bursts of burst.
// A perMinute of zero disables limiting and a nil key uses the TCP peer.
//
//	trust, _ := LoadProxyTrust()
//	rl := NewRateLimiter("analyze", 30, 10, 10*time.Minute, trust.ClientIP)
//	mux.Handle("POST /v1/analyze/text", rl.Middleware(h))
func NewRateLimiter(name string, perMinute, burst int, idleTTL time.Duration, key KeyFunc) *RateLimiter {
	if key == nil {
		key = (*ProxyTrust)(nil).ClientIP
	}
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &RateLimiter{
		name:    name,
		limit:   limit,
		burst:   max(burst, 1),
		idleTTL: idleTTL,
		key:     key,
		now:     time.Now,
		buckets: make(map[netip.Prefix]*bucket),
	}
}

func bucketKey(ip netip.Addr) netip.Prefix {
	bits := ip.BitLen()
	if ip.Is6() {
		bits = 64
	}
	p, _ := ip.Prefix(bits)
	return p
}

// Middleware answers 429 with Retry-After once a client's bucket is empty.
// Requests whose client cannot be resolved share one bucket.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.key(r)
		if err != nil {
			slog.WarnContext(r.Context(), "rate limiter cannot resolve client",
				slog.String("remote_addr", r.RemoteAddr),
				slog.Any("error", err))
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		wait := rl.take(bucketKey(ip))
		if wait == 0 {
			next.ServeHTTP(w, r)
			return
		}

		rateLimitRejected.WithLabelValues(rl.name).Inc()
		slog.WarnContext(r.Context(), "rate limit exceeded",
			slog.String("limiter", rl.name),
			slog.String("client", ip.String()),
			slog.String("path", r.URL.Path))
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		respond.Public(w, http.StatusTooManyRequests, "too many requests", nil)
	})
}

// take spends one token and returns zero, or leaves the bucket untouched
// and returns how long until a token is available.
func (rl *RateLimiter) take(k netip.Prefix) time.Duration {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[k]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[k] = b
		rateLimitClients.WithLabelValues(rl.name).Set(float64(len(rl.buckets)))
	}
	b.seen = now

	res := b.ReserveN(now, 1)
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return d
	}
	return 0
}

// CleanupExpired drops buckets idle for longer than the idle TTL and
// returns how many were dropped.
func (rl *RateLimiter) CleanupExpired() int {
	cutoff := rl.now().Add(-rl.idleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	before := len(rl.buckets)
	for k, b := range rl.buckets {
		if b.seen.Before(cutoff) {
			delete(rl.buckets, k)
		}
	}
	rateLimitClients.WithLabelValues(rl.name).Set(float64(len(rl.buckets)))
	return before - len(rl.buckets)
}

func (rl *RateLimiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// RunCleanup calls CleanupExpired every interval until ctx is done.
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := rl.CleanupExpired(); n > 0 {
				slog.Debug("rate limiter dropped idle clients",
					slog.String("limiter", rl.name),
					slog.Int("removed", n),
					slog.Int("active", rl.ActiveClients()))
			}
		}
	}
}
