package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(nil)

	m.Fetch("/api/strompreise", "ok")
	m.Fetch("/api/strompreise", "ok")
	m.Fallback("lastyear", "empty")
	m.Stale("overlay")
	m.Redraw("update")
	m.ClientLog("warn")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetches.WithLabelValues("/api/strompreise", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("lastyear", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stale.WithLabelValues("overlay")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redraws.WithLabelValues("update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.clientLog.WithLabelValues("warn")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Fetch("x", "ok")
		m.Fallback("x", "y")
		m.Stale("x")
		m.Redraw("x")
		m.ClientLog("x")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(nil)
	m.Fallback("comparison", "status")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `spotchart_overlay_fallbacks_total{overlay="comparison",reason="status"} 1`)
}
