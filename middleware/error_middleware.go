package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/goccy/go-json"

	"travel-blog-server/logging"
	"travel-blog-server/utils/errors"
)

// ErrorMiddleware recovers panics and answers them with a standardized 500.
func ErrorMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logging.Ctx(r.Context()).Error().
						Interface("panic", rec).
						Bytes("stack", debug.Stack()).
						Str("path", r.URL.Path).
						Msg("Panic recovered")
					WriteError(w, errors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes an APIError as a JSON response. Server errors are logged
// with their details, which are then left out of the body.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorContext(w, nil, err)
}

// WriteErrorContext is WriteError with the request available for log context.
func WriteErrorContext(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, ok := err.(*errors.APIError)
	if !ok {
		apiErr = errors.Wrap(err, "UNKNOWN_ERROR", errors.ErrInternal.Message, errors.ErrInternal.Status)
	}

	body := *apiErr
	if apiErr.Status >= http.StatusInternalServerError {
		logger := logging.Logger()
		if r != nil {
			logger = *logging.Ctx(r.Context())
		}
		logger.Error().Str("code", apiErr.Code).Str("details", apiErr.Details).Msg("Server error")
		body.Message = errors.ErrInternal.Message
		body.Details = ""
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(body)
}
