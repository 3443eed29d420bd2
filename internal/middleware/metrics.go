package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/breakline/surfspots/internal/observability"
)

// Metrics returns middleware that records each request in the Prometheus
// counters: a total by method/route/status and a duration histogram.
//
// The route pattern (e.g. "/api/spots/{id}") is used as the path label, not
// the raw URL — raw paths would explode the label cardinality with every
// distinct spot ID.
func Metrics(m *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}

			m.HTTPRequests.WithLabelValues(
				r.Method, pattern, strconv.Itoa(wrapped.statusCode),
			).Inc()
			m.RequestDuration.WithLabelValues(
				r.Method, pattern,
			).Observe(time.Since(start).Seconds())
		})
	}
}
