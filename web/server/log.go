package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"

	"go.hackfix.me/hello/web/metrics"
)

// requestLogger returns a logger HTTP handler using the given logger. It also
// records the request in the Prometheus metrics.
func requestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info(
				fmt.Sprintf("%s %s", r.Method, r.URL),
				"response_code", m.Code,
				"duration", m.Duration,
				"bytes_sent", m.Written,
				"remote_addr", r.RemoteAddr,
			)
			metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(m.Code)).Inc()
			metrics.RequestDuration.WithLabelValues(r.Method).Observe(m.Duration.Seconds())
		}
		return http.HandlerFunc(fn)
	}
}
