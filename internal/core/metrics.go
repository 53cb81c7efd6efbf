package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Device flow
	RecordDeviceCodeGenerated(success bool)
	RecordDeviceCodeAuthorized(authorizationTime time.Duration)
	RecordDeviceCodePoll(result string)
	RecordDeviceCodesSwept(count int)

	// Device tokens
	RecordTokenValidation(result string)

	// Web sessions
	RecordLogin(method string, success bool)
	RecordLogout()
	RecordSessionRefresh(success bool)
	RecordSessionAuthentication(result string)
	RecordExternalAPICall(operation string, duration time.Duration)
}
