package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel-blog-server/logging"
	"travel-blog-server/middleware"
	"travel-blog-server/utils/errors"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to encode response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NewAPIError(errors.ErrInvalidInput.Code, errors.ErrInvalidInput.Message, http.StatusBadRequest, err.Error())
	}
	return nil
}

// pathObjectID parses the named route variable as an ObjectID.
func pathObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		return primitive.NilObjectID, errors.Invalid("INVALID_ID", "Invalid "+name)
	}
	return id, nil
}

func callerID(r *http.Request) (primitive.ObjectID, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, errors.ErrUnauthorized
	}
	return id, nil
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	middleware.WriteErrorContext(w, r, err)
}
