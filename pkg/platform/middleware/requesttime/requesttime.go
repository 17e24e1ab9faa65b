// Package requesttime pins a single "now" for the lifetime of a request so
// session refresh decisions, blocked_at comparisons, and audit timestamps all
// agree within one evaluation.
package requesttime

import (
	"net/http"
	"time"

	"careergate/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
