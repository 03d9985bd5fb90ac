package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserCreated() {}
func (n *NoopRecorder) IncProfileUpdated() {}
func (n *NoopRecorder) IncTokenIssued() {}
func (n *NoopRecorder) IncLoginFailed() {}
func (n *NoopRecorder) IncAuthFailed(string) {}
func (n *NoopRecorder) IncAuthCacheHit() {}
func (n *NoopRecorder) IncAuthCacheMiss() {}
func (n *NoopRecorder) IncResourceCreated(string) {}

func (n *NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
