package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/VladKvetkin/gofood/internal/metrics"
)

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(resp, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		route := "unmatched"
		if routeContext := chi.RouteContext(req.Context()); routeContext != nil && routeContext.RoutePattern() != "" {
			route = routeContext.RoutePattern()
		}

		metrics.HTTPRequestsTotal.
			WithLabelValues(route, req.Method, strconv.Itoa(statusOf(ww))).
			Inc()
	})
}
