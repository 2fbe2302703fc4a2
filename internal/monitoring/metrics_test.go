package monitoring_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskly/backend/internal/monitoring"
)

func do(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMetricsCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := monitoring.NewMetrics()

	r := gin.New()
	r.Use(metrics.Middleware())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/metrics", metrics.Handler())

	do(r, "GET", "/ok")
	do(r, "GET", "/ok")
	do(r, "GET", "/boom")

	w := do(r, "GET", "/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		RequestCount int64            `json:"request_count"`
		ErrorCount   int64            `json:"error_count"`
		StatusCodes  map[string]int64 `json:"status_codes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.RequestCount)
	assert.Equal(t, int64(1), stats.ErrorCount)
	assert.Equal(t, int64(2), stats.StatusCodes["200"])
	assert.Equal(t, int64(1), stats.StatusCodes["500"])
}

func TestHealthCheckerAllHealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	health := monitoring.NewHealthChecker()
	health.Register("database", func(ctx context.Context) error { return nil })
	health.Register("redis", func(ctx context.Context) error { return nil })

	r := gin.New()
	r.GET("/health", health.Handler())

	w := do(r, "GET", "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
	assert.Contains(t, w.Body.String(), `"redis":"ok"`)
}

func TestHealthCheckerReportsFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	health := monitoring.NewHealthChecker()
	health.Register("database", func(ctx context.Context) error { return nil })
	health.Register("redis", func(ctx context.Context) error { return errors.New("connection refused") })

	r := gin.New()
	r.GET("/health", health.Handler())

	w := do(r, "GET", "/health")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestHealthCheckerNoChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	health := monitoring.NewHealthChecker()

	r := gin.New()
	r.GET("/health", health.Handler())

	w := do(r, "GET", "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}
