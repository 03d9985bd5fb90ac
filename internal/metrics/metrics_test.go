package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var (
	_ Recorder    = (*NoopRecorder)(nil)
	_ Recorder    = (*InMemoryRecorder)(nil)
	_ Recorder    = (*PrometheusRecorder)(nil)
	_ Snapshotter = (*InMemoryRecorder)(nil)
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncUserCreated()
	m.IncTokenIssued()
	m.IncTokenIssued()
	m.IncLoginFailed()
	m.IncAuthFailed("missing")
	m.IncAuthFailed("missing")
	m.IncAuthFailed("invalid")
	m.IncResourceCreated("tag")
	m.IncAuthCacheHit()
	m.ObserveHTTPRequest("GET", "/user/me", 200, time.Millisecond)

	snap := m.Snapshot()

	if snap.UsersCreated != 1 {
		t.Errorf("UsersCreated = %d, want 1", snap.UsersCreated)
	}
	if snap.TokensIssued != 2 {
		t.Errorf("TokensIssued = %d, want 2", snap.TokensIssued)
	}
	if snap.LoginsFailed != 1 {
		t.Errorf("LoginsFailed = %d, want 1", snap.LoginsFailed)
	}
	if snap.AuthFailed["missing"] != 2 || snap.AuthFailed["invalid"] != 1 {
		t.Errorf("AuthFailed = %v", snap.AuthFailed)
	}
	if snap.ResourcesCreated["tag"] != 1 {
		t.Errorf("ResourcesCreated = %v", snap.ResourcesCreated)
	}
	if snap.AuthCacheHits != 1 || snap.HTTPRequests != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	// Snapshot maps are copies.
	snap.AuthFailed["missing"] = 99
	if m.Snapshot().AuthFailed["missing"] != 2 {
		t.Error("snapshot should not alias recorder state")
	}
}

func TestPrometheusRecorder_Counters(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewPrometheus(registry)

	m.IncUserCreated()
	m.IncTokenIssued()
	m.IncLoginFailed()
	m.IncLoginFailed()
	m.IncAuthFailed("malformed")
	m.IncResourceCreated("recipe")
	m.IncResourceCreated("recipe")
	m.IncAuthCacheMiss()

	if got := testutil.ToFloat64(m.usersCreated); got != 1 {
		t.Errorf("users_created_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.loginsFailed); got != 2 {
		t.Errorf("logins_failed_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.authFailed.WithLabelValues("malformed")); got != 1 {
		t.Errorf("auth_failures_total{malformed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.resourcesCreated.WithLabelValues("recipe")); got != 2 {
		t.Errorf("resources_created_total{recipe} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.authCache.WithLabelValues("miss")); got != 1 {
		t.Errorf("auth_cache_lookups_total{miss} = %v, want 1", got)
	}
}

func TestPrometheusRecorder_HTTP(t *testing.T) {
	t.Parallel()

	m := NewPrometheus(prometheus.NewRegistry())
	m.ObserveHTTPRequest("POST", "/recipe/tags", 201, 15*time.Millisecond)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/recipe/tags", "201")); got != 1 {
		t.Errorf("http_requests_total = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.httpDuration); n != 1 {
		t.Errorf("histogram series = %d, want 1", n)
	}
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	t.Parallel()

	m := NewPrometheus(nil)
	m.IncTokenIssued()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"recipe_tokens_issued_total 1", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
