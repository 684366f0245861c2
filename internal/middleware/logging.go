package middleware

import (
	"net/http"
	"time"

	"telar/internal/contextutils"

	"go.uber.org/zap"
)

// slowRequestThreshold marks requests worth a warning-level log line.
const slowRequestThreshold = 2 * time.Second

// responseWriter captures the status code and bytes written for logging
type responseWriter struct {
	http.ResponseWriter
	status       int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Logging emits one structured log line per request with correlation ID,
// status, duration and response size.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("request_id", contextutils.GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.status),
				zap.Duration("duration", duration),
				zap.Int64("response_size", rw.bytesWritten),
			}

			logger.Info("Request completed", fields...)

			if duration > slowRequestThreshold {
				logger.Warn("Slow request detected", fields...)
			}
		})
	}
}
