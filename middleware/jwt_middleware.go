package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel-blog-server/auth"
	"travel-blog-server/logging"
	"travel-blog-server/utils/errors"
)

type contextKey string

const userIDKey contextKey = "userID"

// JWTMiddleware rejects requests without a valid bearer token and stores the
// token subject on the request context.
func JWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				WriteErrorContext(w, r, errors.ErrUnauthorized)
				return
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := auth.Parse(jwtSecret, tokenString)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected bearer token")
				WriteErrorContext(w, r, errors.NewAPIError("INVALID_TOKEN", "Invalid or expired token", http.StatusUnauthorized))
				return
			}
			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				WriteErrorContext(w, r, errors.NewAPIError("INVALID_TOKEN", "Invalid or expired token", http.StatusUnauthorized))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, id primitive.ObjectID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the authenticated user id set by JWTMiddleware.
func UserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(userIDKey).(primitive.ObjectID)
	return id, ok
}
