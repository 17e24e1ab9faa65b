// Package request provides request ID correlation middleware. Every request
// gets an ID (propagated from X-Request-ID when the edge proxy already set
// one) that flows through logs and audit events.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"careergate/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// RequestID assigns a correlation ID to the request context and echoes it on
// the response so clients can reference it in support requests.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
