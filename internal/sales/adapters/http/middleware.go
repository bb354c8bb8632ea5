package http

import (
	"net/http"
	"strings"
	"time"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// WithMetrics records duration and count for every request. Paths are
// normalized so each order ID does not become its own metric series.
func WithMetrics(next http.Handler, metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		metrics.RecordRequest(r.Context(), r.Method, normalizePath(r.URL.Path), rw.statusCode, duration)
	})
}

// normalizePath collapses entity identifiers in known routes to a
// placeholder, e.g. /v1/orders/123/lines -> /v1/orders/{id}/lines.
func normalizePath(path string) string {
	for _, prefix := range []string{"/v1/customers/", "/v1/products/", "/v1/orders/"} {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || rest == "" {
			continue
		}
		if strings.HasSuffix(rest, "/lines") {
			return prefix + "{id}/lines"
		}
		return prefix + "{id}"
	}
	return path
}
