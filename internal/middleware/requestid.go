package middleware

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestID assigns an X-Request-Id to every request and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(chimw.RequestIDHeader, GetRequestID(r.Context()))
		next.ServeHTTP(w, r)
	}))
}

func GetRequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
