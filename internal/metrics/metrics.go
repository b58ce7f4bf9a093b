package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// Telemetry generation
	RecordsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_records_generated_total",
			Help: "Total number of synthetic telemetry records generated",
		},
		[]string{"service", "scenario"},
	)

	// Assessment metrics
	Assessments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_assessments_total",
			Help: "Total number of completed assessments by strategy and verdict",
		},
		[]string{"service", "source", "status"},
	)

	AssessmentFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_assessment_failures_total",
			Help: "Total number of assessments that ended in an error",
		},
		[]string{"service", "source"},
	)

	LLMCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_llm_call_duration_seconds",
			Help:    "Duration of chat-completion calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"service", "outcome"},
	)

	ClassifierAvailable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_classifier_available",
			Help: "Whether a trained classifier artifact is loaded (1 = loaded, 0 = absent)",
		},
		[]string{"service"},
	)

	// Feed metrics
	MessagesProduced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_produced_total",
			Help: "Total number of messages produced to the feed",
		},
		[]string{"service", "topic", "status"},
	)

	// Service health metrics
	ServiceHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_health",
			Help: "Health status of the service (1 = healthy, 0 = unhealthy)",
		},
		[]string{"service"},
	)
)

var registerOnce sync.Once

// InitMetrics registers all metrics with Prometheus. Repeated calls only update health.
func InitMetrics(serviceName string) {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			RecordsGenerated,
			Assessments,
			AssessmentFailures,
			LLMCallDuration,
			ClassifierAvailable,
			MessagesProduced,
			ServiceHealth,
		)
	})

	// Set initial health status
	ServiceHealth.WithLabelValues(serviceName).Set(1)
}

// HTTPMiddleware creates a middleware for HTTP metrics collection
func HTTPMiddleware(serviceName string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a wrapper to capture status code
		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		HTTPRequestsTotal.WithLabelValues(
			serviceName,
			r.Method,
			r.URL.Path,
			http.StatusText(wrapper.statusCode),
		).Inc()

		HTTPRequestDuration.WithLabelValues(
			serviceName,
			r.Method,
			r.URL.Path,
		).Observe(time.Since(start).Seconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsHandler returns the Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordGenerated records one generated telemetry record
func RecordGenerated(serviceName, scenario string) {
	RecordsGenerated.WithLabelValues(serviceName, scenario).Inc()
}

// RecordAssessment records a completed assessment
func RecordAssessment(serviceName, source, status string) {
	Assessments.WithLabelValues(serviceName, source, status).Inc()
}

// RecordAssessmentFailure records an assessment that returned an error
func RecordAssessmentFailure(serviceName, source string) {
	AssessmentFailures.WithLabelValues(serviceName, source).Inc()
}

// RecordLLMCall records chat-completion latency
func RecordLLMCall(serviceName string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	LLMCallDuration.WithLabelValues(serviceName, outcome).Observe(duration.Seconds())
}

// RecordMessageProduced records a feed publish attempt
func RecordMessageProduced(serviceName, topic string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	MessagesProduced.WithLabelValues(serviceName, topic, status).Inc()
}

// SetClassifierAvailable reports whether the classifier artifact is loaded
func SetClassifierAvailable(serviceName string, available bool) {
	if available {
		ClassifierAvailable.WithLabelValues(serviceName).Set(1)
	} else {
		ClassifierAvailable.WithLabelValues(serviceName).Set(0)
	}
}

// SetServiceHealth sets the service health status
func SetServiceHealth(serviceName string, healthy bool) {
	if healthy {
		ServiceHealth.WithLabelValues(serviceName).Set(1)
	} else {
		ServiceHealth.WithLabelValues(serviceName).Set(0)
	}
}
