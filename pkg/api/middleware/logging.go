package middleware

import (
	"net/http"
	"time"

	"github.com/dd0wney/cluso-fastindex/pkg/logging"
)

// Logging creates middleware that emits one structured line per request.
func Logging(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapper := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			logger.Info("request served",
				logging.RequestID(GetRequestID(r)),
				logging.String("method", r.Method),
				logging.Path(r.URL.Path),
				logging.Int("status", wrapper.statusCode),
				logging.Latency(time.Since(start)),
			)
		})
	}
}
