package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_NilRegistry(t *testing.T) {
	m := NewMetrics(nil)
	require.NotNil(t, m)

	m.ObserveOutcome("success")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthOutcomesTotal.WithLabelValues("success")))
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveOutcome("redirect")
	m.ObserveOutcome("redirect")
	m.ProviderRequestsTotal.WithLabelValues("isTokenValid", "valid").Inc()
	m.SessionOpsTotal.WithLabelValues("create", "ok").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthOutcomesTotal.WithLabelValues("redirect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderRequestsTotal.WithLabelValues("isTokenValid", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionOpsTotal.WithLabelValues("create", "ok")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveOutcome("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "openam_auth_outcomes_total")
}
