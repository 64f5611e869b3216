package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveSuccess(time.Millisecond, "undefined", "undefined", "pv")
	m.ObserveSuccess(time.Millisecond, "undefined", "converged", "diesel")
	m.ObserveFailure("invalid_profile")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.assessments.WithLabelValues("pv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assessments.WithLabelValues("diesel")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.irrStatus.WithLabelValues("pv", "undefined")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.irrStatus.WithLabelValues("diesel", "converged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("invalid_profile")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSuccess(time.Second, "converged", "converged", "equal")
		m.ObserveFailure("error")
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveFailure("storage")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dream_assessment_failures_total{reason="storage"} 1`)
}
