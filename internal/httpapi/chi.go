package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nazeru/retail-mock-api/pkg/logging"
)

func newChi(a *API, o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chiAccess(o))
	r.Use(middleware.Recoverer)
	if o.RateLimit != nil {
		r.Use(chiRateLimit(o.RateLimit))
	}
	if o.RequestTimeout > 0 {
		r.Use(middleware.Timeout(o.RequestTimeout))
	}

	if o.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", o.MetricsHandler)
	}
	for _, rt := range a.routes() {
		r.Method(rt.method, rt.path, chiHandler(rt.handle))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, notFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, notFound)
	})
	return r
}

func chiHandler(h func(request) response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, h(toRequest(r, func(name string) string { return chi.URLParam(r, name) })))
	}
}

func chiAccess(o Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID(r)
			w.Header().Set(RequestIDHeader, id)
			r = r.WithContext(logging.WithRequestID(r.Context(), id))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := ""
			if rc := chi.RouteContext(r.Context()); rc != nil {
				pattern = rc.RoutePattern()
			}
			o.observe(id, r.Method, pattern, ww.Status(), start)
		})
	}
}

func chiRateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(clientIP(r)) {
				writeJSON(w, http.StatusTooManyRequests, tooMany)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
