// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory for tests.
type Recorder interface {
	// Account metrics
	IncUserCreated()
	IncProfileUpdated()

	// Token metrics
	IncTokenIssued()
	IncLoginFailed()
	IncAuthFailed(reason string) // missing_token, malformed_token, invalid_token, backend_error
	IncAuthCacheHit()
	IncAuthCacheMiss()

	// Resource metrics
	IncResourceCreated(kind string) // kind: "tag", "ingredient", "recipe"

	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
