package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lms_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lms_register_total",
			Help: "Total number of user registrations",
		},
	)

	// HTTP request counter by endpoint and status
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "login_failure", "invalid_token", "db_error" etc.
	)

	// Policy denial counter
	PolicyDenialCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_policy_denials_total",
			Help: "Total number of resource policy denials",
		},
		[]string{"resource", "action"},
	)

	// Unscoped query counter, tracks explicit tenant-scope opt-outs
	UnscopedQueryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_unscoped_queries_total",
			Help: "Total number of queries issued without the tenant scope attached",
		},
		[]string{"resource"},
	)

	// Tenant operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"}, // operation can be "create", "access", "update_settings", etc.
	)

	// Enrollment operation counter
	EnrollmentOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_enrollment_operations_total",
			Help: "Total number of enrollment operations",
		},
		[]string{"operation"}, // operation can be "enroll", "cancel", "list", etc.
	)
)

// Histogram metrics
var (
	// Request duration
	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lms_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lms_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lms_active_tokens",
			Help: "Number of currently active authentication tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lms_info",
			Help: "Information about the LMS service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(HttpRequestsTotal)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(PolicyDenialCounter)
	prometheus.MustRegister(UnscopedQueryCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(EnrollmentOperationCounter)

	// Register histograms
	prometheus.MustRegister(HttpRequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// RecordAuthError increments the auth error counter for the given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordPolicyDenial increments the policy denial counter
func RecordPolicyDenial(resource, action string) {
	PolicyDenialCounter.With(prometheus.Labels{"resource": resource, "action": action}).Inc()
}

// RecordUnscopedQuery increments the unscoped query counter
func RecordUnscopedQuery(resource string) {
	UnscopedQueryCounter.With(prometheus.Labels{"resource": resource}).Inc()
}

// RecordTenantOperation increments the tenant operation counter
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordEnrollmentOperation increments the enrollment operation counter
func RecordEnrollmentOperation(operation string) {
	EnrollmentOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}
