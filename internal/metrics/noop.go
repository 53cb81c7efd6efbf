package metrics

import "time"

// NoopMetrics is a Recorder that discards everything.
type NoopMetrics struct{}

var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordDeviceCodeGenerated(success bool)                     {}
func (n *NoopMetrics) RecordDeviceCodeAuthorized(authorizationTime time.Duration) {}
func (n *NoopMetrics) RecordDeviceCodePoll(result string)                         {}
func (n *NoopMetrics) RecordDeviceCodesSwept(count int)                           {}
func (n *NoopMetrics) RecordTokenValidation(result string)                        {}
func (n *NoopMetrics) RecordLogin(method string, success bool)                    {}
func (n *NoopMetrics) RecordLogout()                                              {}
func (n *NoopMetrics) RecordSessionRefresh(success bool)                          {}
func (n *NoopMetrics) RecordSessionAuthentication(result string)                  {}
func (n *NoopMetrics) RecordExternalAPICall(operation string, duration time.Duration) {
}
