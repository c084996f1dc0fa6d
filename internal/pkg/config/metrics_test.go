package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConfigMetricsWith("test", reg)

	m.RecordFallback("cron_schedule")
	m.RecordFallback("cron_schedule")
	m.RecordFallback("timezone")
	m.SetFallbackActive(true)
	m.RecordLoadTimestamp()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("cron_schedule")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("cron_schedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("timezone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))
	assert.Positive(t, testutil.ToFloat64(m.LoadTimestamp))

	m.SetFallbackActive(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbackActive))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"test_config_load_timestamp",
		"test_config_validation_errors_total",
		"test_config_fallbacks_total",
		"test_config_fallback_active",
	}, names)
}

func TestNewConfigMetricsWith_DuplicatePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewConfigMetricsWith("dup", reg)
	assert.Panics(t, func() { NewConfigMetricsWith("dup", reg) })
}
