package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetricsWhenDisabled(t *testing.T) {
	m := New(false)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.ObserveStage("github", "success", time.Second)
	m.IncFallbacks("leetcode")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsWhenEnabled(t *testing.T) {
	m, ok := New(true).(*Metrics)
	require.True(t, ok)

	m.IncRequestsTotal("/api/about", 200)
	m.IncRequestsTotal("/api/about", 201)
	m.IncRequestsTotal("/api/about", 404)
	m.ObserveStage("github", "success", 2*time.Second)
	m.ObserveStage("github", "failed", time.Second)
	m.IncFallbacks("leetcode")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/about", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/about", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageRuns.WithLabelValues("github", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("leetcode")))
	assert.Greater(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("github")), 0.0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body), "portfoliosync_sync_stage_runs_total")
}

func TestHTTPStatusBucket(t *testing.T) {
	tests := map[int]string{100: "1xx", 204: "2xx", 301: "3xx", 429: "4xx", 503: "5xx"}
	for code, expected := range tests {
		assert.Equal(t, expected, httpStatusBucket(code))
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(true).(*Metrics)

	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/api/skills", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/skills", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/skills", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("unmatched", "4xx")))
}
