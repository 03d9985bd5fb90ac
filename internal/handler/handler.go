// Package handler provides HTTP request handlers and the API router.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ritesshguptaa/recipy-app-api/internal/auth"
	"github.com/ritesshguptaa/recipy-app-api/internal/middleware"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
	"github.com/ritesshguptaa/recipy-app-api/internal/service"
)

var (
	errMalformedJSON = errors.New("malformed JSON body")
	errBodyTooLarge  = errors.New("request body too large")
)

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found.", nil)
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		`Method "`+r.Method+`" not allowed.`, nil)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, fields map[string][]string) {
	middleware.WriteError(w, status, code, message, fields)
}

// decodeJSON reads the request body into dst. An empty body decodes as {}.
// The body must hold exactly one JSON value.
// Field type mismatches come back as *service.ValidationError.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		var trailing json.RawMessage
		if err = dec.Decode(&trailing); errors.Is(err, io.EOF) {
			return nil
		}
		if err == nil {
			return errMalformedJSON
		}
	}

	var maxBytesErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxBytesErr):
		return errBodyTooLarge
	case errors.Is(err, model.ErrInvalidPrice):
		return service.TypeMismatch("price", "price", "")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		field, _, _ := strings.Cut(typeErr.Field, ".")
		return service.TypeMismatch(field, typeErr.Type.Kind().String(), typeErr.Value)
	default:
		return errMalformedJSON
	}
}

// responder maps service errors onto HTTP responses.
type responder struct {
	logger *slog.Logger
}

func (h responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input.", verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Unable to authenticate with provided credentials.", nil)
	case errors.Is(err, errMalformedJSON):
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
	case errors.Is(err, service.ErrNoOwner), errors.Is(err, service.ErrUserNotFound):
		// The token resolved but its user is gone.
		w.Header().Set("WWW-Authenticate", middleware.TokenScheme)
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided or are invalid.", nil)
	default:
		h.logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("user_id", auth.UserIDFromContext(r.Context())),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
	}
}
