package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	m := Init(true)
	require.NotNil(t, m)

	metrics, ok := m.(*Metrics)
	require.True(t, ok, "Init(true) should return *Metrics")
	assert.NotNil(t, metrics.DeviceCodesTotal)
	assert.NotNil(t, metrics.DeviceCodePollsTotal)
	assert.NotNil(t, metrics.SessionRefreshTotal)
	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.Same(t, metrics, GetMetrics())
	assert.Same(t, metrics, Init(true), "collectors are registered once")
}

func TestInitNoop(t *testing.T) {
	m := Init(false)
	_, ok := m.(*NoopMetrics)
	assert.True(t, ok, "Init(false) should return *NoopMetrics")

	// Must not panic.
	m.RecordDeviceCodeGenerated(true)
	m.RecordDeviceCodePoll("pending")
	m.RecordSessionRefresh(false)
	m.RecordExternalAPICall("authenticate", time.Second)
}

func TestRecordDeviceFlow(t *testing.T) {
	m := Init(true).(*Metrics)

	before := testutil.ToFloat64(m.DeviceCodePollsTotal.WithLabelValues("pending"))
	m.RecordDeviceCodePoll("pending")
	assert.InDelta(t, before+1, testutil.ToFloat64(m.DeviceCodePollsTotal.WithLabelValues("pending")), 0.001)

	swept := testutil.ToFloat64(m.DeviceCodesSweptTotal)
	m.RecordDeviceCodesSwept(3)
	m.RecordDeviceCodesSwept(0)
	assert.InDelta(t, swept+3, testutil.ToFloat64(m.DeviceCodesSweptTotal), 0.001)

	authorized := testutil.ToFloat64(m.DeviceCodesAuthorizedTotal)
	m.RecordDeviceCodeAuthorized(30 * time.Second)
	assert.InDelta(t, authorized+1, testutil.ToFloat64(m.DeviceCodesAuthorizedTotal), 0.001)
}

func TestRecordSessionRefresh(t *testing.T) {
	m := Init(true).(*Metrics)

	ok := testutil.ToFloat64(m.SessionRefreshTotal.WithLabelValues(resultSuccess))
	failed := testutil.ToFloat64(m.SessionRefreshTotal.WithLabelValues(resultError))
	m.RecordSessionRefresh(true)
	m.RecordSessionRefresh(false)

	assert.InDelta(t, ok+1, testutil.ToFloat64(m.SessionRefreshTotal.WithLabelValues(resultSuccess)), 0.001)
	assert.InDelta(t, failed+1, testutil.ToFloat64(m.SessionRefreshTotal.WithLabelValues(resultError)), 0.001)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := Init(true).(*Metrics)

	r := gin.New()
	r.Use(HTTPMetricsMiddleware(m))
	r.GET("/user", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/user", "200"))
	healthBefore := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))

	for _, path := range []string{"/user", "/health"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.InDelta(t, before+1, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/user", "200")), 0.001)
	assert.InDelta(t, healthBefore, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")), 0.001)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "unknown", normalizePath(""))
	assert.Equal(t, "/cli/auth/token", normalizePath("/cli/auth/token"))
}
