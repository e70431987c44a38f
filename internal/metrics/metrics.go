package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisions counts policy engine outcomes per resource and verb.
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_authz_decisions_total",
			Help: "Authorization decisions by resource type, verb and outcome",
		},
		[]string{"resource", "verb", "outcome"},
	)

	// RequestDuration tracks HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinic_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)

// RecordDecision increments the authz decision counter
func RecordDecision(resource, verb string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	AuthzDecisions.WithLabelValues(resource, verb, outcome).Inc()
}

// Middleware observes request durations
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		RequestDuration.
			WithLabelValues(r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
