package providers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func LoggingMiddleware(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			logger.Infof(GetLogTypeByRequestType(r.Method), "%s %s %d %s req=%s",
				r.Method, r.URL.Path, sw.status, time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}
