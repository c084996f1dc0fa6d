// Package slo tracks the service level objectives of the API: availability,
// error rate and tail latency over a rolling window of served requests.
package slo

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Targets. URL analyses include an outbound fetch, so the latency bounds are
// looser than a pure database API would use.
const (
	AvailabilitySLO = 99.9  // percent
	ErrorRateSLO    = 0.001 // ratio of 5xx responses
	LatencyP95SLO   = 1.0   // seconds
	LatencyP99SLO   = 5.0   // seconds
)

// Gauges refreshed by Window.Flush.
var (
	availabilityGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_availability_ratio",
		Help: "Share of non-5xx responses in the last window, target 0.999",
	})
	errorRateGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_error_rate_ratio",
		Help: "Share of 5xx responses in the last window, target 0.001",
	})
	p95Gauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p95_seconds",
		Help: "p95 latency in the last window, target 1s",
	})
	p99Gauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p99_seconds",
		Help: "p99 latency in the last window, target 5s",
	})
)

func publish(s Snapshot) {
	availabilityGauge.Set(s.Availability)
	errorRateGauge.Set(s.ErrorRate)
	p95Gauge.Set(s.P95.Seconds())
	p99Gauge.Set(s.P99.Seconds())
}

// Breaches lists the targets s misses, e.g. "p95 1.2s > 1s". An empty
// window breaches nothing.
func (s Snapshot) Breaches() []string {
	if s.Requests == 0 {
		return nil
	}
	var out []string
	if s.Availability*100 < AvailabilitySLO {
		out = append(out, fmt.Sprintf("availability %.3f%% < %.1f%%", s.Availability*100, AvailabilitySLO))
	}
	if s.P95.Seconds() > LatencyP95SLO {
		out = append(out, fmt.Sprintf("p95 %s > %gs", s.P95, LatencyP95SLO))
	}
	if s.P99.Seconds() > LatencyP99SLO {
		out = append(out, fmt.Sprintf("p99 %s > %gs", s.P99, LatencyP99SLO))
	}
	return out
}
