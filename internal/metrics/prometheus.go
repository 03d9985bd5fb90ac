package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipe"

// PrometheusRecorder implements Recorder on a Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	usersCreated     prometheus.Counter
	profilesUpdated  prometheus.Counter
	tokensIssued     prometheus.Counter
	loginsFailed     prometheus.Counter
	authFailed       *prometheus.CounterVec
	authCache        *prometheus.CounterVec
	resourcesCreated *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewPrometheus creates a recorder and registers its collectors on registry.
// A nil registry gets a fresh one with the Go and process collectors.
func NewPrometheus(registry *prometheus.Registry) *PrometheusRecorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &PrometheusRecorder{
		registry: registry,
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Total number of user accounts created",
		}),
		profilesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_updated_total",
			Help:      "Total number of profile updates",
		}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total number of auth tokens issued",
		}),
		loginsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_failed_total",
			Help:      "Total number of rejected credential pairs",
		}),
		authFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of rejected token authentications",
		}, []string{"reason"}),
		authCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_cache_lookups_total",
			Help:      "Token cache lookups by result",
		}, []string{"result"}),
		resourcesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resources_created_total",
			Help:      "Total number of created resources by kind",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.usersCreated,
		m.profilesUpdated,
		m.tokensIssued,
		m.loginsFailed,
		m.authFailed,
		m.authCache,
		m.resourcesCreated,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncUserCreated increments the user created counter.
func (m *PrometheusRecorder) IncUserCreated() { m.usersCreated.Inc() }

// IncProfileUpdated increments the profile updated counter.
func (m *PrometheusRecorder) IncProfileUpdated() { m.profilesUpdated.Inc() }

// IncTokenIssued increments the token issued counter.
func (m *PrometheusRecorder) IncTokenIssued() { m.tokensIssued.Inc() }

// IncLoginFailed increments the failed login counter.
func (m *PrometheusRecorder) IncLoginFailed() { m.loginsFailed.Inc() }

// IncAuthFailed increments the auth failure counter for reason.
func (m *PrometheusRecorder) IncAuthFailed(reason string) {
	m.authFailed.WithLabelValues(reason).Inc()
}

// IncAuthCacheHit counts a token cache hit.
func (m *PrometheusRecorder) IncAuthCacheHit() { m.authCache.WithLabelValues("hit").Inc() }

// IncAuthCacheMiss counts a token cache miss.
func (m *PrometheusRecorder) IncAuthCacheMiss() { m.authCache.WithLabelValues("miss").Inc() }

// IncResourceCreated increments the created counter for kind.
func (m *PrometheusRecorder) IncResourceCreated(kind string) {
	m.resourcesCreated.WithLabelValues(kind).Inc()
}

// ObserveHTTPRequest records a served request. route is the router pattern, not the raw path.
func (m *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
