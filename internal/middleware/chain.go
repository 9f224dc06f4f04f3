package middleware

import "net/http"

// Chain wraps h so the middlewares run in the order given.
//
// Example:
//
//	handler := Chain(mux,
//	    RequestLogging,            // Executes first, sees the final status
//	    AuthMiddleware(authSvc),   // Executes second, sets the user for handlers
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}