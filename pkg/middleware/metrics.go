package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docsys_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docsys_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

// Metrics counts requests and observes latency labelled by the matched
// ServeMux pattern, so path parameters do not explode label cardinality.
// Unmatched requests are labelled "unmatched".
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}
			httpRequests.WithLabelValues(path, strconv.Itoa(sw.status)).Inc()
			httpDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
		})
	}
}
