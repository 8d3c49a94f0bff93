package middleware

import (
	"net/http"

	"github.com/VladKvetkin/gofood/internal/auth"
)

// Auth resolves the caller for every request and stores the outcome on the
// request context. Rejecting is left to the handlers.
func Auth(guard *auth.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			identity, err := guard.Authenticate(req)

			req = req.WithContext(auth.WithResult(req.Context(), identity, err))

			next.ServeHTTP(resp, req)
		})
	}
}
