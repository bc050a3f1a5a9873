package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// HTTPObserver records one finished request. *metrics.Collector satisfies it.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// NewMetrics returns a middleware that reports every request to obs, labelled
// by the chi route pattern rather than the raw path so that draft ids do not
// explode label cardinality. Requests no route matched are reported as
// "unmatched".
func NewMetrics(obs HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			obs.ObserveHTTP(r.Method, route, ww.Status(), time.Since(start))
		})
	}
}
