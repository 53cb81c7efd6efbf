package metrics

import (
	"sync"
	"time"

	"github.com/grvsharma1810/pulse/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is an alias so callers outside core can keep importing metrics.
type Recorder = core.Recorder

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Device flow
	DeviceCodesTotal                *prometheus.CounterVec
	DeviceCodesAuthorizedTotal      prometheus.Counter
	DeviceCodePollsTotal            *prometheus.CounterVec
	DeviceCodesSweptTotal           prometheus.Counter
	DeviceCodeAuthorizationDuration prometheus.Histogram

	// Device tokens
	TokenValidationTotal *prometheus.CounterVec

	// Web sessions
	LoginTotal                 *prometheus.CounterVec
	LogoutTotal                prometheus.Counter
	SessionRefreshTotal        *prometheus.CounterVec
	SessionAuthenticationTotal *prometheus.CounterVec
	ExternalAPIDuration        *prometheus.HistogramVec

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns Prometheus-backed metrics when enabled and NoopMetrics otherwise.
// Prometheus collectors are registered only once per process.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		DeviceCodesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_device_codes_total",
				Help: "Total number of device codes generated",
			},
			[]string{"result"}, // success, error
		),
		DeviceCodesAuthorizedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_device_codes_authorized_total",
				Help: "Total number of device codes authorized by users",
			},
		),
		DeviceCodePollsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_device_code_polls_total",
				Help: "Total number of device code polls by result",
			},
			[]string{"result"}, // authorized, pending, expired, not_found, error
		),
		DeviceCodesSweptTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_device_codes_swept_total",
				Help: "Total number of stale device authorizations removed",
			},
		),
		DeviceCodeAuthorizationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pulse_device_code_authorization_duration_seconds",
				Help:    "Time between device code creation and user authorization",
				Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
			},
		),

		TokenValidationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_device_token_validation_total",
				Help: "Total number of device token validations",
			},
			[]string{"result"}, // valid, invalid, expired
		),

		LoginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_logins_total",
				Help: "Total number of completed logins",
			},
			[]string{"method", "result"}, // web|device, success|failure
		),
		LogoutTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_logouts_total",
				Help: "Total number of logouts",
			},
		),
		SessionRefreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_session_refresh_total",
				Help: "Total number of upstream session refreshes",
			},
			[]string{"result"},
		),
		SessionAuthenticationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_session_authentication_total",
				Help: "Total number of sealed session checks by outcome",
			},
			[]string{"result"},
		),
		ExternalAPIDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pulse_external_api_duration_seconds",
				Help:    "Duration of identity provider calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
	}
}

// GetMetrics returns the process-wide Prometheus metrics, or nil before Init(true).
func GetMetrics() *Metrics {
	return defaultMetrics
}

func (m *Metrics) RecordDeviceCodeGenerated(success bool) {
	m.DeviceCodesTotal.WithLabelValues(resultLabel(success, resultError)).Inc()
}

func (m *Metrics) RecordDeviceCodeAuthorized(authorizationTime time.Duration) {
	m.DeviceCodesAuthorizedTotal.Inc()
	m.DeviceCodeAuthorizationDuration.Observe(authorizationTime.Seconds())
}

func (m *Metrics) RecordDeviceCodePoll(result string) {
	m.DeviceCodePollsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordDeviceCodesSwept(count int) {
	if count > 0 {
		m.DeviceCodesSweptTotal.Add(float64(count))
	}
}

func (m *Metrics) RecordTokenValidation(result string) {
	m.TokenValidationTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordLogin(method string, success bool) {
	m.LoginTotal.WithLabelValues(method, resultLabel(success, resultFailure)).Inc()
}

func (m *Metrics) RecordLogout() {
	m.LogoutTotal.Inc()
}

func (m *Metrics) RecordSessionRefresh(success bool) {
	m.SessionRefreshTotal.WithLabelValues(resultLabel(success, resultError)).Inc()
}

func (m *Metrics) RecordSessionAuthentication(result string) {
	m.SessionAuthenticationTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordExternalAPICall(operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func resultLabel(success bool, failure string) string {
	if success {
		return resultSuccess
	}
	return failure
}
