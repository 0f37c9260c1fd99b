package transport

import (
	"errors"
	"net/http"
	"strconv"

	"glasses-inventory/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DateLayout is the wire format of sale dates
const DateLayout = "2006-01-02"

// respondDecodeError reports a body that failed to decode or validate
func respondDecodeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Debug("Request validation failed", zap.Error(err))

	// Check if it's a validation error
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	var malformed *middleware.MalformedBodyError
	if errors.As(err, &malformed) {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
}

// pathID parses the {id} URL parameter
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// pageParam reads ?page, defaulting to the first page
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
