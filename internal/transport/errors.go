package transport

import (
	"errors"
	"net/http"

	"game-rental/internal/middleware"
	"game-rental/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusFor maps an error kind to the HTTP status clients see
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError writes err with the status of its kind. Internal
// and unavailable errors are logged and never shown to the client verbatim.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)

	switch kind {
	case service.KindInternal:
		logger.Error(op+" failed", zap.Error(err))
		middleware.RespondWithError(w, status, "internal server error")
	case service.KindUnavailable:
		logger.Warn(op+" failed, store unavailable", zap.Error(err))
		w.Header().Set("Retry-After", "1")
		middleware.RespondWithError(w, status, "service temporarily unavailable")
	default:
		logger.Debug(op+" rejected", zap.String("kind", kind.String()), zap.Error(err))
		middleware.RespondWithError(w, status, rootMessage(err))
	}
}

// rootMessage is the message of the sentinel err wraps, without the
// context added on the way up
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// decodeRequest decodes and validates a JSON body, writing the 400 itself on
// failure. It reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	err := middleware.DecodeAndValidate(r, v)
	if err == nil {
		return true
	}

	logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return false
	}

	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
	return false
}

// idParam parses the {id} URL parameter, writing a 400 when it is malformed
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery parses an optional UUID query parameter
func optionalUUIDQuery(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
