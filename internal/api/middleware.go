package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/felixge/httpsnoop"
	"go.uber.org/zap"

	"github.com/hal9000y/mail-triage/internal/logger"
	"github.com/hal9000y/mail-triage/internal/metrics"
)

// observe tags each request with an ID, then logs and measures it.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(logger.RequestIDHeader)
		if id == "" {
			id = logger.NewRequestID()
		}
		w.Header().Set(logger.RequestIDHeader, id)

		r = r.WithContext(logger.ContextWithRequestID(r.Context(), id))

		m := httpsnoop.CaptureMetrics(next, w, r)

		route := routeLabel(r.Pattern)
		metrics.RecordHTTPRequestDuration(r.Method, route, strconv.Itoa(m.Code), m.Duration)

		logger.WithRequest(r.Context(), s.log).Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", m.Code),
			zap.Duration("duration", m.Duration),
		)
	})
}

// routeLabel strips the method from a ServeMux pattern to keep metric
// cardinality bounded by the route table.
func routeLabel(pattern string) string {
	if pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}
