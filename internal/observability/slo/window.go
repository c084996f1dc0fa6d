package slo

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"
)

// DefaultWindowSize bounds the latency samples kept between flushes.
const DefaultWindowSize = 4096

// Snapshot is the SLO state computed by one Flush.
type Snapshot struct {
	Requests     int
	ServerErrors int
	Availability float64
	ErrorRate    float64
	P95          time.Duration
	P99          time.Duration
}

// Window collects request outcomes between flushes. When more than size
// requests arrive in one window, the oldest latency samples are overwritten;
// the request and error counts stay exact.
type Window struct {
	mu        sync.Mutex
	size      int
	latencies []time.Duration
	next      int
	requests  int
	errors    int
}

// NewWindow returns a Window keeping at most size latency samples.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{size: size, latencies: make([]time.Duration, 0, size)}
}

var defaultWindow = NewWindow(DefaultWindowSize)

// Default returns the process wide window fed by the HTTP metrics middleware.
func Default() *Window { return defaultWindow }

// Observe records one served request. Only 5xx responses count against
// availability.
func (w *Window) Observe(status int, d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.requests++
	if status >= 500 {
		w.errors++
	}
	if len(w.latencies) < w.size {
		w.latencies = append(w.latencies, d)
		return
	}
	w.latencies[w.next] = d
	w.next = (w.next + 1) % w.size
}

// Flush computes the snapshot of the current window, publishes it to the SLO
// gauges and starts a new window. An empty window reports full availability
// and zero latency.
func (w *Window) Flush() Snapshot {
	w.mu.Lock()
	samples := slices.Clone(w.latencies)
	snap := Snapshot{Requests: w.requests, ServerErrors: w.errors}
	w.latencies = w.latencies[:0]
	w.next = 0
	w.requests = 0
	w.errors = 0
	w.mu.Unlock()

	snap.Availability = 1
	if snap.Requests > 0 {
		snap.ErrorRate = float64(snap.ServerErrors) / float64(snap.Requests)
		snap.Availability = 1 - snap.ErrorRate
	}
	slices.Sort(samples)
	snap.P95 = percentile(samples, 0.95)
	snap.P99 = percentile(samples, 0.99)

	publish(snap)
	return snap
}

// Run flushes w every interval until ctx is cancelled. Windows that breach
// a target are logged at Warn.
func (w *Window) Run(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := w.Flush()
			if breaches := snap.Breaches(); len(breaches) > 0 {
				logger.Warn("slo target breached",
					slog.Any("breaches", breaches),
					slog.Int("requests", snap.Requests),
					slog.Int("server_errors", snap.ServerErrors),
					slog.Duration("p95", snap.P95),
					slog.Duration("p99", snap.P99))
			}
		}
	}
}

// percentile uses the nearest-rank method on sorted samples.
func percentile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(q*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	return sorted[rank]
}
