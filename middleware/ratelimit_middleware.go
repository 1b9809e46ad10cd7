package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"travel-blog-server/logging"
	"travel-blog-server/utils/errors"
)

var errTooManyRequests = errors.NewAPIError("RATE_LIMITED", "Too many requests, please try again later", http.StatusTooManyRequests)

// RateLimitByIP allows requestLimit requests per client IP per window.
func RateLimitByIP(requestLimit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requestLimit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logging.Ctx(r.Context()).Warn().Str("remote", r.RemoteAddr).Str("path", r.URL.Path).Msg("Rate limit exceeded")
			WriteErrorContext(w, r, errTooManyRequests)
		}),
	)
}
