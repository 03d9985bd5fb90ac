package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated     uint64
	ProfilesUpdated  uint64
	TokensIssued     uint64
	LoginsFailed     uint64
	AuthCacheHits    uint64
	AuthCacheMisses  uint64
	AuthFailed       map[string]uint64
	ResourcesCreated map[string]uint64
	HTTPRequests     uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersCreated    uint64
	profilesUpdated uint64
	tokensIssued    uint64
	loginsFailed    uint64
	authCacheHits   uint64
	authCacheMisses uint64
	httpRequests    uint64

	mu               sync.Mutex
	authFailed       map[string]uint64
	resourcesCreated map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		authFailed:       make(map[string]uint64),
		resourcesCreated: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	authFailed := make(map[string]uint64, len(m.authFailed))
	for k, v := range m.authFailed {
		authFailed[k] = v
	}
	created := make(map[string]uint64, len(m.resourcesCreated))
	for k, v := range m.resourcesCreated {
		created[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		UsersCreated:     atomic.LoadUint64(&m.usersCreated),
		ProfilesUpdated:  atomic.LoadUint64(&m.profilesUpdated),
		TokensIssued:     atomic.LoadUint64(&m.tokensIssued),
		LoginsFailed:     atomic.LoadUint64(&m.loginsFailed),
		AuthCacheHits:    atomic.LoadUint64(&m.authCacheHits),
		AuthCacheMisses:  atomic.LoadUint64(&m.authCacheMisses),
		AuthFailed:       authFailed,
		ResourcesCreated: created,
		HTTPRequests:     atomic.LoadUint64(&m.httpRequests),
	}
}

// IncUserCreated increments the user created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncProfileUpdated increments the profile updated counter.
func (m *InMemoryRecorder) IncProfileUpdated() {
	atomic.AddUint64(&m.profilesUpdated, 1)
}

// IncTokenIssued increments the token issued counter.
func (m *InMemoryRecorder) IncTokenIssued() {
	atomic.AddUint64(&m.tokensIssued, 1)
}

// IncLoginFailed increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailed() {
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncAuthFailed increments the auth failure counter for reason.
func (m *InMemoryRecorder) IncAuthFailed(reason string) {
	m.mu.Lock()
	m.authFailed[reason]++
	m.mu.Unlock()
}

// IncAuthCacheHit increments the auth cache hit counter.
func (m *InMemoryRecorder) IncAuthCacheHit() {
	atomic.AddUint64(&m.authCacheHits, 1)
}

// IncAuthCacheMiss increments the auth cache miss counter.
func (m *InMemoryRecorder) IncAuthCacheMiss() {
	atomic.AddUint64(&m.authCacheMisses, 1)
}

// IncResourceCreated increments the created counter for kind.
func (m *InMemoryRecorder) IncResourceCreated(kind string) {
	m.mu.Lock()
	m.resourcesCreated[kind]++
	m.mu.Unlock()
}

// ObserveHTTPRequest counts a served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
}
