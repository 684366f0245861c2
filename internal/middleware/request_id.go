package middleware

import (
	"net/http"

	"telar/internal/contextutils"

	"github.com/google/uuid"
)

// Request ID header constants
const (
	HeaderXRequestID     = "X-Request-ID"
	HeaderXCorrelationID = "X-Correlation-ID"
)

// RequestID injects a correlation ID for request tracing. An incoming
// X-Request-ID or X-Correlation-ID header is honored so IDs survive proxies.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderXRequestID)
		if requestID == "" {
			requestID = r.Header.Get(HeaderXCorrelationID)
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, requestID)

		ctx := contextutils.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
