package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOutcome(t *testing.T) {
	m := New()
	m.RecordOutcome("login", "ok")
	m.RecordOutcome("login", "ok")
	m.RecordOutcome("login", "invalid_credentials")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthOutcomesTotal.WithLabelValues("login", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthOutcomesTotal.WithLabelValues("login", "invalid_credentials")))
}

func TestRecordRequest_GroupsStatus(t *testing.T) {
	m := New()
	m.RecordRequest("POST", "/api/auth/login", http.StatusUnauthorized, 0.01)
	m.RecordRequest("POST", "/api/auth/login", http.StatusBadRequest, 0.02)
	m.RecordRequest("POST", "/api/auth/login", http.StatusOK, 0.03)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/auth/login", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/auth/login", "2xx")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOutcome("signup", "ok")
		m.RecordRequest("GET", "/", 200, 0)
	})
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.RecordOutcome("gate", "missing_token")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pitchfork_auth_outcomes_total{operation="gate",outcome="missing_token"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
